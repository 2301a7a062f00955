package grpc_server

import (
	"context"
	"errors"
	"time"

	"pinboard/models"
	"pinboard/services"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	PinFeedServiceName = "pinboard.PinFeed"
	ListPinsMethod     = "/pinboard.PinFeed/ListPins"
	GetPinMethod       = "/pinboard.PinFeed/GetPin"
)

// PinFeedServer is the read side of the pin API over gRPC. Messages are
// well-known protobuf types carrying the same fields as the JSON API.
type PinFeedServer interface {
	ListPins(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetPin(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
}

// PinFeedServiceDesc describes pinboard.PinFeed for grpc.Server.RegisterService.
var PinFeedServiceDesc = grpc.ServiceDesc{
	ServiceName: PinFeedServiceName,
	HandlerType: (*PinFeedServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPins", Handler: listPinsHandler},
		{MethodName: "GetPin", Handler: getPinHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pinboard/pin_feed",
}

func RegisterPinFeedServer(s grpc.ServiceRegistrar, srv PinFeedServer) {
	s.RegisterService(&PinFeedServiceDesc, srv)
}

func listPinsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PinFeedServer).ListPins(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListPinsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PinFeedServer).ListPins(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getPinHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PinFeedServer).GetPin(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetPinMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PinFeedServer).GetPin(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// PinFeedClient calls pinboard.PinFeed.
type PinFeedClient interface {
	ListPins(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	GetPin(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type pinFeedClient struct {
	cc grpc.ClientConnInterface
}

func NewPinFeedClient(cc grpc.ClientConnInterface) PinFeedClient {
	return &pinFeedClient{cc: cc}
}

func (c *pinFeedClient) ListPins(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListPinsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pinFeedClient) GetPin(ctx context.Context, in *wrapperspb.UInt64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetPinMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type pinFeedServer struct {
	pinService services.PinService
	logger     *zap.Logger
}

var _ PinFeedServer = (*pinFeedServer)(nil)

// NewPinFeedServer serves the feed from pinService.
func NewPinFeedServer(pinService services.PinService, logger *zap.Logger) PinFeedServer {
	return &pinFeedServer{pinService: pinService, logger: logger.Named("PinFeed")}
}

func (s *pinFeedServer) ListPins(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	pins, err := s.pinService.ListPins(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}

	values := make([]*structpb.Value, 0, len(pins))
	for i := range pins {
		st, err := structpb.NewStruct(pinFields(&pins[i]))
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encoding pin %d: %v", pins[i].ID, err)
		}
		values = append(values, structpb.NewStructValue(st))
	}
	return &structpb.ListValue{Values: values}, nil
}

func (s *pinFeedServer) GetPin(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	if req.GetValue() == 0 {
		return nil, status.Error(codes.InvalidArgument, "pin id is required")
	}

	pin, err := s.pinService.GetPin(ctx, uint(req.GetValue()))
	if err != nil {
		return nil, s.toStatus(err)
	}

	fields := pinFields(pin)
	comments := make([]interface{}, 0, len(pin.Comments))
	for _, c := range pin.Comments {
		comments = append(comments, map[string]interface{}{
			"id":        c.ID,
			"text":      c.Text,
			"authorId":  c.AuthorID,
			"author":    map[string]interface{}{"id": c.Author.ID, "name": c.Author.Name},
			"createdAt": c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	fields["comments"] = comments

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding pin %d: %v", pin.ID, err)
	}
	return st, nil
}

func (s *pinFeedServer) toStatus(err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error("Unhandled service error", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func pinFields(pin *models.Pin) map[string]interface{} {
	return map[string]interface{}{
		"id":           pin.ID,
		"title":        pin.Title,
		"image":        pin.Image,
		"externallink": pin.ExternalLink,
		"authorId":     pin.AuthorID,
		"author":       map[string]interface{}{"id": pin.Author.ID, "name": pin.Author.Name},
		"likes":        pin.LikeCount,
		"createdAt":    pin.CreatedAt.UTC().Format(time.RFC3339),
	}
}
