package alarm

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
)

// fakeService implements Service for unit testing the transport.
type fakeService struct {
	mu        sync.Mutex
	submitted []domain.Request
	cancelled []string
	lines     []string
}

func (f *fakeService) Submit(_ context.Context, req domain.Request) (*domain.Handle, error) {
	if req.Time == "" {
		return nil, nil //nolint:nilnil // Mirrors the scheduler's no-op.
	}

	fireTime, err := time.ParseInLocation(domain.TimeLayout, req.Time, time.UTC)
	if err != nil {
		return nil, &domain.TimeFormatError{Input: req.Time, Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitted = append(f.submitted, req)
	f.lines = append(f.lines, req.Time+" "+req.Label)

	return &domain.Handle{FireTime: fireTime, Sequence: uint64(len(f.submitted))}, nil
}

func (f *fakeService) Cancel(_ context.Context, timeString string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancelled = append(f.cancelled, timeString)

	return timeString == "2024-01-01T07:00", nil
}

// requests returns a copy of the submitted requests.
func (f *fakeService) requests() []domain.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]domain.Request(nil), f.submitted...)
}

func (f *fakeService) UpcomingLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.lines...)
}

// staticFeed is a fixed notification list.
type staticFeed []string

func (s staticFeed) List() []string { return s }

// dialBufconn serves srv over an in-memory listener and returns a client.
func dialBufconn(t *testing.T, srv AlarmClockServer) AlarmClockClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	RegisterAlarmClockServer(grpcServer, srv)

	go func() {
		_ = grpcServer.Serve(lis) //nolint:errcheck // Stopped in cleanup.
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		grpcServer.Stop()
	})

	return NewAlarmClockClient(conn)
}

// submitRequest builds a SubmitAlarm payload.
func submitRequest(t *testing.T, at, label string, repeat bool) *structpb.Struct {
	t.Helper()

	req, err := structpb.NewStruct(map[string]any{
		FieldTime:   at,
		FieldLabel:  label,
		FieldRepeat: repeat,
	})
	require.NoError(t, err)

	return req
}

// TestServer_SubmitAlarm_Validation ensures bad input maps to InvalidArgument.
func TestServer_SubmitAlarm_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService), nil)

	_, err := s.SubmitAlarm(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.SubmitAlarm(context.Background(), submitRequest(t, "tomorrow", "bad", false))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Roundtrip exercises every method through a real gRPC stack.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	service := new(fakeService)
	client := dialBufconn(t, NewServer(service, staticFeed{"2024-01-01 07:00:00: Your alarm with label Gym is going off!"}))

	ctx := WithActor(context.Background(), &domain.Actor{Hostname: "desk-1", Username: "o.shokin"})

	resp, err := client.SubmitAlarm(ctx, submitRequest(t, "2024-01-01T07:00", "Gym", true))
	require.NoError(t, err)
	require.True(t, resp.GetFields()[FieldSubmitted].GetBoolValue())
	require.Equal(t, "2024-01-01T07:00", resp.GetFields()[FieldFireTime].GetStringValue())
	require.InDelta(t, 1, resp.GetFields()[FieldSequence].GetNumberValue(), 0)

	require.Equal(t, []domain.Request{{Time: "2024-01-01T07:00", Label: "Gym", Repeat: true}}, service.requests())

	resp, err = client.SubmitAlarm(ctx, submitRequest(t, "", "", false))
	require.NoError(t, err)
	require.False(t, resp.GetFields()[FieldSubmitted].GetBoolValue())

	_, err = client.SubmitAlarm(ctx, submitRequest(t, "soon", "", false))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	upcoming, err := client.ListUpcoming(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Len(t, upcoming.GetValues(), 1)
	require.Equal(t, "2024-01-01T07:00 Gym", upcoming.GetValues()[0].GetStringValue())

	cancelled, err := client.CancelAlarm(ctx, wrapperspb.String("2024-01-01T07:00"))
	require.NoError(t, err)
	require.True(t, cancelled.GetValue())

	cancelled, err = client.CancelAlarm(ctx, wrapperspb.String("2024-01-01T09:00"))
	require.NoError(t, err)
	require.False(t, cancelled.GetValue())

	notifications, err := client.ListNotifications(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Len(t, notifications.GetValues(), 1)
}

// TestServer_ListNotificationsWithoutFeed returns an empty list.
func TestServer_ListNotificationsWithoutFeed(t *testing.T) {
	t.Parallel()

	resp, err := NewServer(new(fakeService), nil).ListNotifications(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.Empty(t, resp.GetValues())
}

// TestActorMetadata checks the actor survives the outgoing to incoming hop.
func TestActorMetadata(t *testing.T) {
	t.Parallel()

	require.Nil(t, ActorFromContext(context.Background()))

	var seen *domain.Actor

	interceptor := func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = ActorFromContext(ctx)

		return handler(ctx, req)
	}

	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
	RegisterAlarmClockServer(grpcServer, NewServer(new(fakeService), nil))

	go func() {
		_ = grpcServer.Serve(lis) //nolint:errcheck // Stopped below.
	}()
	defer grpcServer.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	actor := &domain.Actor{Hostname: "desk-1", Username: "o.shokin"}

	_, err = NewAlarmClockClient(conn).ListUpcoming(WithActor(context.Background(), actor), new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, actor, seen)
}
