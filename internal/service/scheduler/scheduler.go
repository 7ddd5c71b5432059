package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/smart-alarm/internal/clock"
	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
	"github.com/oshokin/smart-alarm/internal/logger"
	"github.com/oshokin/smart-alarm/internal/notify"
	"github.com/oshokin/smart-alarm/internal/repository/queue"
)

// PollInterval caps every wait so the loop rereads the wall clock. Timers
// follow the monotonic clock, which stops while the host is suspended.
const PollInterval = time.Minute

// Scheduler validates requests, keeps the pending queue and fires due alarms.
type Scheduler struct {
	// clock supplies the current time and timers.
	clock clock.Clock
	// location interprets submitted wall-clock times and renders the list.
	location *time.Location
	// sink receives fired and cancelled alarms.
	sink notify.Sink
	// onAlertFailure reports sink failures in addition to the error log.
	onAlertFailure func(ctx context.Context, err error)

	// mu guards queue and lateFires.
	mu    sync.Mutex
	queue *queue.Queue
	// lateFires counts alarms fired at least PollInterval after their time.
	lateFires uint64

	// wake is signalled after every queue mutation made outside the loop.
	wake chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock, typically with clock.Fake in tests.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the zone submitted times are read in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithSink sets where alarm events go. Defaults to notify.Log.
func WithSink(sink notify.Sink) Option {
	return func(s *Scheduler) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithAlertFailureHandler registers fn to be told about every failed alert.
func WithAlertFailureHandler(fn func(ctx context.Context, err error)) Option {
	return func(s *Scheduler) {
		s.onAlertFailure = fn
	}
}

// New creates an idle scheduler with an empty queue.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    clock.Real{},
		location: time.Local,
		sink:     notify.Log{},
		queue:    queue.New(),
		wake:     make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Location returns the zone used for input and display.
func (s *Scheduler) Location() *time.Location {
	return s.location
}

// Submit parses req and queues the alarm. A request without a time is a
// no-op and returns a nil handle. Malformed times return an error matching
// domain.ErrInvalidTimeFormat and leave the queue untouched.
func (s *Scheduler) Submit(ctx context.Context, req domain.Request) (*domain.Handle, error) {
	fireTime, ok, err := domain.ParseTime(req.Time, s.location)
	if err != nil {
		logger.WarnKV(ctx, "Rejected alarm", "time", req.Time, "error", err)

		return nil, err
	}

	if !ok {
		return nil, nil //nolint:nilnil // Nothing submitted is not an error.
	}

	s.mu.Lock()
	handle := s.queue.Insert(fireTime, req.Label, req.Repeat)
	s.mu.Unlock()

	s.signal()

	logger.InfoKV(ctx, "Alarm set",
		"fire_time", fireTime.Format(domain.TimeLayout),
		"sequence", handle.Sequence,
		"label", req.Label,
		"repeat", req.Repeat,
	)

	return &handle, nil
}

// Cancel removes the earliest inserted alarm due exactly at timeString.
// It reports false when nothing matched; an empty timeString is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, timeString string) (bool, error) {
	fireTime, ok, err := domain.ParseTime(timeString, s.location)
	if err != nil {
		logger.WarnKV(ctx, "Rejected cancellation", "time", timeString, "error", err)

		return false, err
	}

	if !ok {
		return false, nil
	}

	s.mu.Lock()
	removed, found := s.queue.Cancel(fireTime)
	s.mu.Unlock()

	if !found {
		logger.InfoKV(ctx, "Nothing to cancel", "fire_time", fireTime.Format(domain.TimeLayout), "error", domain.ErrNotFound)

		return false, nil
	}

	s.signal()

	if err := guard(removed, func() error { return s.sink.AlarmCancelled(ctx, removed) }); err != nil {
		logger.ErrorKV(ctx, "Cancellation notification failed", "error", err)
	}

	return true, nil
}

// Upcoming returns the pending alarms in firing order.
func (s *Scheduler) Upcoming() []domain.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queue.Snapshot()
}

// UpcomingLines renders Upcoming for display.
func (s *Scheduler) UpcomingLines() []string {
	return domain.DisplayLines(s.Upcoming(), s.location)
}

// Len returns the number of pending alarms.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queue.Len()
}

// LateFires reports how many alarms fired at least PollInterval late,
// e.g. after the host resumed or while a repeating alarm caught up.
func (s *Scheduler) LateFires() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lateFires
}

// Run fires alarms until ctx is cancelled. Alarms whose time has already
// passed fire immediately, in order. A failing alert never stops the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "scheduler")

	logger.Info(ctx, "Scheduler started")

	for {
		next, err := s.peek()
		if errors.Is(err, domain.ErrEmptyQueue) {
			// Idle until something is submitted.
			select {
			case <-ctx.Done():
				logger.Info(ctx, "Scheduler stopped")

				return nil
			case <-s.wake:
				continue
			}
		}

		if wait := next.FireTime.Sub(s.clock.Now()); wait > 0 {
			logger.DebugKV(ctx, "Waiting for alarm", "fire_time", next.FireTime.Format(domain.TimeLayout), "wait", wait)

			timer := s.clock.NewTimer(min(wait, PollInterval))

			select {
			case <-ctx.Done():
				timer.Stop()
				logger.Info(ctx, "Scheduler stopped")

				return nil
			case <-s.wake:
				// The queue changed; re-evaluate the earliest alarm.
				timer.Stop()

				continue
			case <-timer.C():
				// Either due or a poll; fireDue rechecks the time.
			}
		}

		s.fireDue(ctx)
	}
}

// peek returns the earliest alarm under the lock.
func (s *Scheduler) peek() (domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queue.PeekNext()
}

// fireDue pops the earliest alarm if it is due, re-arms it when repeating
// and then alerts outside the lock.
func (s *Scheduler) fireDue(ctx context.Context) {
	s.mu.Lock()

	now := s.clock.Now()

	next, err := s.queue.PeekNext()
	if err != nil || next.FireTime.After(now) {
		s.mu.Unlock()

		return
	}

	fired, _ := s.queue.PopNext() //nolint:errcheck // Peek just succeeded under the same lock.

	late := now.Sub(fired.FireTime)
	if late >= PollInterval {
		s.lateFires++
	}

	lateFires := s.lateFires

	var rearmed *domain.Handle

	if fired.Repeat {
		following := fired.Next()
		handle := s.queue.Insert(following.FireTime, following.Label, following.Repeat)
		rearmed = &handle
	}

	s.mu.Unlock()

	kvs := []any{"fire_time", fired.FireTime.Format(domain.TimeLayout), "label", fired.Label}
	if rearmed != nil {
		kvs = append(kvs, "next_fire_time", rearmed.FireTime.Format(domain.TimeLayout))
	}

	if late >= PollInterval {
		kvs = append(kvs, "late", late.Truncate(time.Second), "late_fires", lateFires)
		logger.WarnKV(ctx, "Overdue alarm fired", kvs...)
	} else {
		logger.InfoKV(ctx, "Alarm fired", kvs...)
	}

	if err := s.alert(ctx, fired); err != nil {
		logger.ErrorKV(ctx, "Alarm alert failed", "error", err)

		if s.onAlertFailure != nil {
			s.onAlertFailure(ctx, err)
		}
	}
}

// alert invokes the sink for a fired alarm.
func (s *Scheduler) alert(ctx context.Context, a domain.Alarm) error {
	return guard(a, func() error { return s.sink.AlarmFired(ctx, a) })
}

// guard runs a sink call, turning failures and panics into *domain.AlertError.
func guard(a domain.Alarm, call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.AlertError{Alarm: a, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if sinkErr := call(); sinkErr != nil {
		return &domain.AlertError{Alarm: a, Err: sinkErr}
	}

	return nil
}

// signal wakes the loop without blocking; one pending wake-up is enough.
func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
