package grpc_server

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"pinboard/auth"
	"pinboard/models"
	"pinboard/repositories"
	"pinboard/services"
	"pinboard/storage"
	"pinboard/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type feedFixture struct {
	conn   *grpc.ClientConn
	client PinFeedClient
	pin    *models.Pin
	token  string
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	auth.Configure([]byte("grpc-test"), time.Hour, "")
	ctx := context.Background()

	db := testutil.NewDB(t)
	store, err := storage.NewDiskStore(t.TempDir(), "/uploads/")
	require.NoError(t, err)
	pinRepo := repositories.NewPinRepository(db)
	users := services.NewUserService(repositories.NewUserRepository(db), 4)
	pins := services.NewPinService(pinRepo, store, services.UploadPolicy{AllowedTypes: []string{"image/png"}}, zap.NewNop())
	comments := services.NewCommentService(repositories.NewCommentRepository(db), pinRepo)

	ann, err := users.Signup(ctx, &services.SignupInput{Email: "ann@x.com", Name: "Ann", Password: "password1"})
	require.NoError(t, err)
	pin, err := pins.CreatePin(ctx, ann.ID, &services.CreatePinInput{
		Title:        "sunset",
		ExternalLink: "https://example.com/sunset",
		Image:        &services.ImageUpload{File: bytes.NewReader(pngBytes), Size: int64(len(pngBytes))},
	})
	require.NoError(t, err)
	_, err = comments.CreateComment(ctx, pin.ID, ann.ID, &services.CreateCommentInput{Text: "mine"})
	require.NoError(t, err)
	token, err := auth.GenerateToken(ann)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	server, _ := NewServer(pins, zap.NewNop())
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &feedFixture{conn: conn, client: NewPinFeedClient(conn), pin: pin, token: token}
}

func (f *feedFixture) authed(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+f.token)
}

func TestHealthCheck(t *testing.T) {
	f := newFeedFixture(t)

	resp, err := healthpb.NewHealthClient(f.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: PinFeedServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestListPinsIsPublic(t *testing.T) {
	f := newFeedFixture(t)

	list, err := f.client.ListPins(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	require.Len(t, list.GetValues(), 1)

	pin := list.GetValues()[0].GetStructValue().AsMap()
	assert.Equal(t, "sunset", pin["title"])
	assert.Equal(t, float64(f.pin.ID), pin["id"])
	assert.Equal(t, "Ann", pin["author"].(map[string]interface{})["name"])
}

func TestGetPin(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	t.Run("Requires a token", func(t *testing.T) {
		_, err := f.client.GetPin(ctx, wrapperspb.UInt64(uint64(f.pin.ID)))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))

		bad := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer garbage")
		_, err = f.client.GetPin(bad, wrapperspb.UInt64(uint64(f.pin.ID)))
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Found", func(t *testing.T) {
		pin, err := f.client.GetPin(f.authed(ctx), wrapperspb.UInt64(uint64(f.pin.ID)))
		require.NoError(t, err)
		fields := pin.AsMap()
		assert.Equal(t, "https://example.com/sunset", fields["externallink"])
		comments := fields["comments"].([]interface{})
		require.Len(t, comments, 1)
		assert.Equal(t, "mine", comments[0].(map[string]interface{})["text"])
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := f.client.GetPin(f.authed(ctx), wrapperspb.UInt64(9999))
		assert.Equal(t, codes.NotFound, status.Code(err))

		_, err = f.client.GetPin(f.authed(ctx), wrapperspb.UInt64(0))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestServerRegisteredServices(t *testing.T) {
	server, _ := NewServer(nil, zap.NewNop())
	t.Cleanup(server.Stop)

	info := server.GetServiceInfo()
	assert.Len(t, info, 2)
	assert.Contains(t, info, healthpb.Health_ServiceDesc.ServiceName)
	require.Contains(t, info, PinFeedServiceName)

	methods := make([]string, 0, len(info[PinFeedServiceName].Methods))
	for _, m := range info[PinFeedServiceName].Methods {
		methods = append(methods, m.Name)
	}
	assert.ElementsMatch(t, []string{"ListPins", "GetPin"}, methods)
}
