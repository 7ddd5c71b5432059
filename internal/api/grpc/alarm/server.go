package alarm

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
	"github.com/oshokin/smart-alarm/internal/logger"
)

// Service abstracts the scheduler operations the transport depends on.
type Service interface {
	Submit(ctx context.Context, req domain.Request) (*domain.Handle, error)
	Cancel(ctx context.Context, timeString string) (bool, error)
	UpcomingLines() []string
}

// Notifications lists the notification feed, newest first.
type Notifications interface {
	List() []string
}

// Server implements AlarmClockServer on top of a Service.
type Server struct {
	// service provides the scheduler operations.
	service Service
	// notifications is optional; without it ListNotifications is empty.
	notifications Notifications
}

var _ AlarmClockServer = (*Server)(nil)

// NewServer wires the scheduler and the optional feed into a gRPC handler.
func NewServer(service Service, notifications Notifications) *Server {
	return &Server{
		service:       service,
		notifications: notifications,
	}
}

// SubmitAlarm queues an alarm from {time, label, repeat}.
func (s *Server) SubmitAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	ctx = withCaller(ctx)

	fields := req.GetFields()
	request := domain.Request{
		Time:   fields[FieldTime].GetStringValue(),
		Label:  fields[FieldLabel].GetStringValue(),
		Repeat: fields[FieldRepeat].GetBoolValue(),
	}

	handle, err := s.service.Submit(ctx, request)
	if err != nil {
		return nil, toStatus(err)
	}

	response := map[string]any{FieldSubmitted: handle != nil}
	if handle != nil {
		response[FieldFireTime] = handle.FireTime.Format(domain.TimeLayout)
		response[FieldSequence] = float64(handle.Sequence)
	}

	out, err := structpb.NewStruct(response)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode response")
	}

	return out, nil
}

// CancelAlarm cancels one alarm due at the given time and reports whether one matched.
func (s *Server) CancelAlarm(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	cancelled, err := s.service.Cancel(withCaller(ctx), req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.Bool(cancelled), nil
}

// ListUpcoming returns the display lines of pending alarms in firing order.
func (s *Server) ListUpcoming(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return toList(s.service.UpcomingLines()), nil
}

// ListNotifications returns the notification feed, newest first.
func (s *Server) ListNotifications(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	if s.notifications == nil {
		return toList(nil), nil
	}

	return toList(s.notifications.List()), nil
}

// withCaller names the request logger after the calling actor.
func withCaller(ctx context.Context) context.Context {
	return logger.WithKV(logger.WithName(ctx, "grpc"), "actor", ActorFromContext(ctx).String())
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	if errors.Is(err, domain.ErrInvalidTimeFormat) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	return status.Error(codes.Internal, "unable to process alarm")
}

// toList converts strings to a ListValue.
func toList(items []string) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(items))
	for _, item := range items {
		values = append(values, structpb.NewStringValue(item))
	}

	return &structpb.ListValue{Values: values}
}
