package notify

import (
	"context"
	"slices"
	"sync"

	"github.com/oshokin/smart-alarm/internal/clock"
	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
)

const (
	// DefaultFeedLimit bounds the feed when no limit is configured.
	DefaultFeedLimit = 50

	// feedTimeLayout prefixes every notification.
	feedTimeLayout = "2006-01-02 15:04:05"
)

// Feed keeps the latest notifications, newest first.
type Feed struct {
	clock clock.Clock
	limit int

	mu      sync.RWMutex
	entries []string
}

// NewFeed returns a feed holding at most limit entries.
// A non-positive limit uses DefaultFeedLimit.
func NewFeed(c clock.Clock, limit int) *Feed {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	if c == nil {
		c = clock.Real{}
	}

	return &Feed{
		clock: c,
		limit: limit,
	}
}

// Add records a timestamped message.
func (f *Feed) Add(message string) {
	entry := f.clock.Now().Format(feedTimeLayout) + ": " + message

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = slices.Insert(f.entries, 0, entry)
	if len(f.entries) > f.limit {
		clear(f.entries[f.limit:])
		f.entries = f.entries[:f.limit]
	}
}

// List returns a copy of the entries, newest first.
func (f *Feed) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, len(f.entries))
	copy(out, f.entries)

	return out
}

// AlarmFired records the fired alarm.
func (f *Feed) AlarmFired(_ context.Context, a domain.Alarm) error {
	f.Add(FiredMessage(a))

	return nil
}

// AlarmCancelled records the cancelled alarm.
func (f *Feed) AlarmCancelled(_ context.Context, a domain.Alarm) error {
	f.Add(CancelledMessage(a))

	return nil
}
