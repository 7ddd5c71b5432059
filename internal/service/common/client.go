//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/smart-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/smart-alarm/internal/config"
	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
)

// Client wraps the AlarmClock gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the alarm server.
	conn *grpc.ClientConn
	// api is the AlarmClock client.
	api api.AlarmClockClient
	// actor is attached to every call when set.
	actor *domain.Actor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor identifies the caller to the server.
func WithActor(actor *domain.Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// SubmitResult is the server's answer to SubmitAlarm.
type SubmitResult struct {
	// Submitted is false when the request carried no time.
	Submitted bool
	// FireTime is the normalized fire time in domain.TimeLayout.
	FireTime string
	// Sequence is the tie-break number the queue assigned.
	Sequence uint64
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the alarm server at address.
// The transport is insecure: run on a trusted network or behind a TLS proxy.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm server: %w", err)
	}

	return newClient(conn, opts...), nil
}

// newClient wraps an existing connection.
func newClient(conn *grpc.ClientConn, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		api:         api.NewAlarmClockClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// SubmitAlarm asks the server to queue an alarm.
func (c *Client) SubmitAlarm(ctx context.Context, req domain.Request) (*SubmitResult, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	in, err := structpb.NewStruct(map[string]any{
		api.FieldTime:   req.Time,
		api.FieldLabel:  req.Label,
		api.FieldRepeat: req.Repeat,
	})
	if err != nil {
		return nil, fmt.Errorf("encode alarm: %w", err)
	}

	out, err := c.api.SubmitAlarm(callCtx, in)
	if err != nil {
		return nil, fmt.Errorf("submit alarm: %w", err)
	}

	fields := out.GetFields()

	return &SubmitResult{
		Submitted: fields[api.FieldSubmitted].GetBoolValue(),
		FireTime:  fields[api.FieldFireTime].GetStringValue(),
		Sequence:  uint64(fields[api.FieldSequence].GetNumberValue()),
	}, nil
}

// CancelAlarm cancels one alarm due at timeString and reports whether one matched.
func (c *Client) CancelAlarm(ctx context.Context, timeString string) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	out, err := c.api.CancelAlarm(callCtx, wrapperspb.String(timeString))
	if err != nil {
		return false, fmt.Errorf("cancel alarm: %w", err)
	}

	return out.GetValue(), nil
}

// ListUpcoming returns the pending alarms as display lines.
func (c *Client) ListUpcoming(ctx context.Context) ([]string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	out, err := c.api.ListUpcoming(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list upcoming alarms: %w", err)
	}

	return fromList(out), nil
}

// ListNotifications returns the notification feed, newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	out, err := c.api.ListNotifications(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return fromList(out), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The actor, if
// any, is attached as metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = api.WithActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// fromList extracts strings from a ListValue.
func fromList(list *structpb.ListValue) []string {
	items := make([]string, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		items = append(items, v.GetStringValue())
	}

	return items
}
