package notify

import (
	"context"

	"go.uber.org/multierr"

	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
	"github.com/oshokin/smart-alarm/internal/logger"
)

// Sink receives alarm events. Implementations must be safe for concurrent use.
type Sink interface {
	AlarmFired(ctx context.Context, a domain.Alarm) error
	AlarmCancelled(ctx context.Context, a domain.Alarm) error
}

// FiredMessage is the text shown when a fires.
func FiredMessage(a domain.Alarm) string {
	return "Your alarm with label " + a.Label + " is going off!"
}

// CancelledMessage is the text shown when a is cancelled.
func CancelledMessage(a domain.Alarm) string {
	return "Alarm " + a.Display(a.FireTime.Location()) + " has been cancelled."
}

// Multi fans every event out to all sinks and combines their errors.
type Multi []Sink

// AlarmFired calls every sink even when an earlier one fails.
func (m Multi) AlarmFired(ctx context.Context, a domain.Alarm) error {
	var err error

	for _, s := range m {
		err = multierr.Append(err, s.AlarmFired(ctx, a))
	}

	return err
}

// AlarmCancelled calls every sink even when an earlier one fails.
func (m Multi) AlarmCancelled(ctx context.Context, a domain.Alarm) error {
	var err error

	for _, s := range m {
		err = multierr.Append(err, s.AlarmCancelled(ctx, a))
	}

	return err
}

// Log writes alarm events to the context logger.
type Log struct{}

// AlarmFired logs the fired alarm.
func (Log) AlarmFired(ctx context.Context, a domain.Alarm) error {
	logger.InfoKV(ctx, FiredMessage(a),
		"fire_time", a.FireTime.Format(domain.TimeLayout),
		"label", a.Label,
		"repeat", a.Repeat,
	)

	return nil
}

// AlarmCancelled logs the cancelled alarm.
func (Log) AlarmCancelled(ctx context.Context, a domain.Alarm) error {
	logger.InfoKV(ctx, "Alarm cancelled",
		"fire_time", a.FireTime.Format(domain.TimeLayout),
		"label", a.Label,
	)

	return nil
}
