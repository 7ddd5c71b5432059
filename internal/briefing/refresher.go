package briefing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"

	"github.com/oshokin/smart-alarm/internal/clock"
	"github.com/oshokin/smart-alarm/internal/logger"
)

// Source fetches briefing data. *Client implements it.
type Source interface {
	Weather(ctx context.Context) (*Weather, error)
	Headlines(ctx context.Context) ([]string, error)
}

// Notifier receives "... has been updated." messages.
type Notifier interface {
	Add(message string)
}

// Snapshot is the latest briefing.
type Snapshot struct {
	// Weather is nil until the first successful fetch.
	Weather *Weather
	// Headlines is empty until the first successful fetch.
	Headlines []string
	// UpdatedAt is when any part was last refreshed.
	UpdatedAt time.Time
}

// Refresher keeps a Snapshot up to date.
type Refresher struct {
	source   Source
	notifier Notifier
	clock    clock.Clock

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewRefresher creates a refresher. notifier may be nil.
func NewRefresher(source Source, notifier Notifier, c clock.Clock) *Refresher {
	if c == nil {
		c = clock.Real{}
	}

	return &Refresher{
		source:   source,
		notifier: notifier,
		clock:    c,
	}
}

// Snapshot returns a copy of the latest briefing.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.snapshot
	out.Headlines = append([]string(nil), r.snapshot.Headlines...)

	if r.snapshot.Weather != nil {
		w := *r.snapshot.Weather
		out.Weather = &w
	}

	return out
}

// Refresh fetches both sources. A failed source keeps its previous value;
// disabled sources are skipped silently.
func (r *Refresher) Refresh(ctx context.Context) error {
	var errs error

	weather, err := r.source.Weather(ctx)

	switch {
	case err == nil:
		r.update(func(s *Snapshot) { s.Weather = weather })
		r.notify("Weather has been updated.")
	case !errors.Is(err, ErrWeatherDisabled):
		errs = multierr.Append(errs, err)
	}

	headlines, err := r.source.Headlines(ctx)

	switch {
	case err == nil:
		r.update(func(s *Snapshot) { s.Headlines = headlines })
		r.notify("News has been updated.")
	case !errors.Is(err, ErrNewsDisabled):
		errs = multierr.Append(errs, err)
	}

	return errs
}

// Run refreshes immediately and then on schedule until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context, schedule string) error {
	ctx = logger.WithName(ctx, "briefing")

	scheduler := cron.New()

	if _, err := scheduler.AddFunc(schedule, func() { r.refreshAndLog(ctx) }); err != nil {
		return fmt.Errorf("schedule briefing refresh %q: %w", schedule, err)
	}

	r.refreshAndLog(ctx)

	scheduler.Start()
	logger.InfoKV(ctx, "Briefing refresh scheduled", "schedule", schedule)

	<-ctx.Done()

	// Wait for a running refresh to return.
	<-scheduler.Stop().Done()

	return nil
}

// refreshAndLog runs Refresh and logs failures.
func (r *Refresher) refreshAndLog(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
		logger.WarnKV(ctx, "Briefing refresh failed", "error", err)
	}
}

// update mutates the snapshot and stamps it.
func (r *Refresher) update(fn func(*Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(&r.snapshot)
	r.snapshot.UpdatedAt = r.clock.Now()
}

// notify posts message when a notifier is set.
func (r *Refresher) notify(message string) {
	if r.notifier != nil {
		r.notifier.Add(message)
	}
}
