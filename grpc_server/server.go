package grpc_server

import (
	"pinboard/interceptors"
	"pinboard/services"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds the gRPC server with the health service and pinboard.PinFeed.
// No reflection service: PinFeed has no compiled proto descriptor to serve.
// Health checks and the feed listing are public; every other call needs a bearer token.
func NewServer(pinService services.PinService, logger *zap.Logger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.ZapLoggingInterceptor(logger.Named("grpc")),
			interceptors.AuthInterceptor(
				healthpb.Health_Check_FullMethodName,
				ListPinsMethod,
			),
		),
		grpc.ChainStreamInterceptor(
			interceptors.ZapStreamLoggingInterceptor(logger.Named("grpc")),
		),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	RegisterPinFeedServer(s, NewPinFeedServer(pinService, logger))

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(PinFeedServiceName, healthpb.HealthCheckResponse_SERVING)
	return s, healthServer
}
