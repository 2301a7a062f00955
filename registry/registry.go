package registry

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this process with a discovery backend and finds
// healthy instances of other processes.
type ServiceRegistry interface {
	// Register announces an instance. id must be unique per instance; name is the
	// logical service name shared by all instances.
	Register(id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error

	// Deregister removes the instance registered under id.
	Deregister(id string) error

	// Discover returns "host:port" for each healthy instance of name, optionally filtered by tag.
	Discover(name string, tag string) ([]string, error)
}

// InstanceID builds the registration id of one listener of a service.
func InstanceID(serviceName, host string, port int, protocol string) string {
	return fmt.Sprintf("%s-%s-%s-%d", serviceName, protocol, host, port)
}
