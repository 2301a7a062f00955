package interceptors

import (
	"context"
	"testing"
	"time"

	"pinboard/auth"
	"pinboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

func echoUser(ctx context.Context, _ interface{}) (interface{}, error) {
	id, _ := GetUserIDFromContext(ctx)
	return id, nil
}

func TestAuthInterceptor(t *testing.T) {
	auth.Configure([]byte("interceptor-test"), time.Hour, "")
	interceptor := AuthInterceptor("/pinboard.PinFeed/ListPins")
	private := &grpc.UnaryServerInfo{FullMethod: "/pinboard.PinFeed/GetPin"}

	t.Run("Public method", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/pinboard.PinFeed/ListPins"}, echoUser)
		require.NoError(t, err)
		assert.Equal(t, uint(0), resp)
	})

	t.Run("No metadata", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, private, echoUser)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Malformed header", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Token abc"))
		_, err := interceptor(ctx, nil, private, echoUser)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Invalid token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer garbage"))
		_, err := interceptor(ctx, nil, private, echoUser)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := auth.GenerateToken(&models.User{Model: gorm.Model{ID: 42}, Name: "Ann"})
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))

		resp, err := interceptor(ctx, nil, private, func(ctx context.Context, req interface{}) (interface{}, error) {
			name, ok := GetUserNameFromContext(ctx)
			assert.True(t, ok)
			assert.Equal(t, "Ann", name)
			return echoUser(ctx, req)
		})
		require.NoError(t, err)
		assert.Equal(t, uint(42), resp)
	})
}

func TestZapLoggingInterceptorPassesThrough(t *testing.T) {
	interceptor := ZapLoggingInterceptor(zap.NewNop())
	resp, err := interceptor(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/pinboard.PinFeed/ListPins"},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			return "resp", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
}
