package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "smartalarm.v1.AlarmClock"

// Full method names, as seen by interceptors and clients.
const (
	SubmitAlarmMethod       = "/" + ServiceName + "/SubmitAlarm"
	CancelAlarmMethod       = "/" + ServiceName + "/CancelAlarm"
	ListUpcomingMethod      = "/" + ServiceName + "/ListUpcoming"
	ListNotificationsMethod = "/" + ServiceName + "/ListNotifications"
)

// Field names of the SubmitAlarm request and response structs.
const (
	FieldTime      = "time"
	FieldLabel     = "label"
	FieldRepeat    = "repeat"
	FieldSubmitted = "submitted"
	FieldFireTime  = "fire_time"
	FieldSequence  = "sequence"
)

// AlarmClockServer is the server API of the AlarmClock service.
type AlarmClockServer interface {
	SubmitAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelAlarm(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	ListUpcoming(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	ListNotifications(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
}

// ServiceDesc describes the AlarmClock service for grpc.Server.
//
//nolint:gochecknoglobals // Mirrors what protoc-gen-go-grpc would emit.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitAlarm",
			Handler:    unary(SubmitAlarmMethod, newStruct, AlarmClockServer.SubmitAlarm),
		},
		{
			MethodName: "CancelAlarm",
			Handler:    unary(CancelAlarmMethod, newStringValue, AlarmClockServer.CancelAlarm),
		},
		{
			MethodName: "ListUpcoming",
			Handler:    unary(ListUpcomingMethod, newEmpty, AlarmClockServer.ListUpcoming),
		},
		{
			MethodName: "ListNotifications",
			Handler:    unary(ListNotificationsMethod, newEmpty, AlarmClockServer.ListNotifications),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "smartalarm/v1/alarm_clock.proto",
}

// RegisterAlarmClockServer registers srv on the given registrar.
func RegisterAlarmClockServer(s grpc.ServiceRegistrar, srv AlarmClockServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req, Resp any](
	fullMethod string,
	newReq func() Req,
	call func(AlarmClockServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}

		impl, _ := srv.(AlarmClockServer)

		if interceptor == nil {
			return call(impl, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req)

			return call(impl, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

func newStruct() *structpb.Struct { return new(structpb.Struct) }

func newStringValue() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

// AlarmClockClient is the client API of the AlarmClock service.
type AlarmClockClient interface {
	SubmitAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CancelAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	ListUpcoming(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	ListNotifications(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

// alarmClockClient invokes the service over a connection.
type alarmClockClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmClockClient returns a client using cc.
//
//nolint:ireturn // Matches the generated-client convention.
func NewAlarmClockClient(cc grpc.ClientConnInterface) AlarmClockClient {
	return &alarmClockClient{cc: cc}
}

func (c *alarmClockClient) SubmitAlarm(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SubmitAlarmMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) CancelAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, CancelAlarmMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) ListUpcoming(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListUpcomingMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) ListNotifications(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListNotificationsMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
