package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateHTTPCheck(t *testing.T) {
	check := CreateHTTPCheck("pinboard-http", "10.0.0.5", 5000, "/health", "10s", "2s")

	assert.Equal(t, "check_pinboard-http_http", check.CheckID)
	assert.Equal(t, "http://10.0.0.5:5000/health", check.HTTP)
	assert.Equal(t, "GET", check.Method)
	assert.Equal(t, "10s", check.Interval)
	assert.Equal(t, "2s", check.Timeout)
	assert.Equal(t, "http", checkProtocol(check))
}

func TestCreateGRPCSCheck(t *testing.T) {
	check := CreateGRPCSCheck("pinboard-grpc", "10.0.0.5:50051", "10s", "2s", false)

	assert.Equal(t, "10.0.0.5:50051", check.GRPC)
	assert.False(t, check.GRPCUseTLS)
	assert.Equal(t, "grpc", checkProtocol(check))
	assert.Empty(t, checkProtocol((*consulapi.AgentServiceCheck)(nil)))
}

func TestInstanceID(t *testing.T) {
	assert.Equal(t, "pinboard-http-host1-5000", InstanceID("pinboard", "host1", 5000, "http"))
}

func TestConsulRegistryRegisterAndDeregister(t *testing.T) {
	var registered consulapi.AgentServiceRegistration
	var deregistered string

	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/agent/self":
			_, _ = w.Write([]byte(`{"Config":{"NodeName":"node-1"}}`))
		case r.URL.Path == "/v1/agent/service/register":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&registered))
		case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
			deregistered = strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/")
		default:
			http.NotFound(w, r)
		}
	}))
	defer agent.Close()

	reg, err := NewConsulRegistry(agent.Listener.Addr().String(), zap.NewNop())
	require.NoError(t, err)

	check := CreateHTTPCheck("pinboard-http-host1-5000", "host1", 5000, "/health", "10s", "2s")
	require.NoError(t, reg.Register("pinboard-http-host1-5000", "pinboard", "host1", 5000, []string{"http"}, check))
	assert.Equal(t, "pinboard", registered.Name)
	assert.Equal(t, 5000, registered.Port)
	assert.Equal(t, "http", registered.Meta["protocol"])
	require.NotNil(t, registered.Check)
	assert.Equal(t, "http://host1:5000/health", registered.Check.HTTP)

	require.NoError(t, reg.Deregister("pinboard-http-host1-5000"))
	assert.Equal(t, "pinboard-http-host1-5000", deregistered)
}

func TestConsulRegistryDiscover(t *testing.T) {
	var query string
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/agent/self":
			_, _ = w.Write([]byte(`{"Config":{"NodeName":"node-1"}}`))
		case "/v1/health/service/pinboard":
			query = r.URL.RawQuery
			_, _ = w.Write([]byte(`[
				{"Node":{"Address":"10.0.0.9"},"Service":{"Address":"10.0.0.5","Port":5000}},
				{"Node":{"Address":"10.0.0.7"},"Service":{"Address":"","Port":5001}}
			]`))
		case "/v1/health/service/missing":
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer agent.Close()

	reg, err := NewConsulRegistry(agent.Listener.Addr().String(), zap.NewNop())
	require.NoError(t, err)

	addrs, err := reg.Discover("pinboard", "http")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.5:5000", "10.0.0.7:5001"}, addrs)
	assert.Contains(t, query, "passing=1")
	assert.Contains(t, query, "tag=http")

	_, err = reg.Discover("missing", "")
	assert.ErrorContains(t, err, "no healthy instances")
}

func TestNewConsulRegistryUnreachable(t *testing.T) {
	agent := httptest.NewServer(http.NotFoundHandler())
	agent.Close()

	_, err := NewConsulRegistry(agent.Listener.Addr().String(), zap.NewNop())
	assert.Error(t, err)
}
