package clock

import (
	"sync"
	"time"
)

// Fake is a Clock whose time only moves when told to.
// It is safe for concurrent use.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

// NewTimer returns a timer that fires once the fake time reaches now+d.
// A non-positive duration fires immediately.
//
//nolint:ireturn // Timer is the abstraction under test.
func (f *Fake) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTimer{
		owner:    f,
		deadline: f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}

	if d <= 0 {
		t.ch <- f.now

		return t
	}

	f.timers = append(f.timers, t)

	return t
}

// Advance moves the clock forward by d and fires due timers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	now := f.now.Add(d)
	f.mu.Unlock()

	f.Set(now)
}

// Set moves the clock to t and fires due timers. Moving backwards only changes Now.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = t

	pending := f.timers[:0]

	for _, timer := range f.timers {
		if timer.deadline.After(t) {
			pending = append(pending, timer)

			continue
		}

		timer.ch <- t
	}

	clear(f.timers[len(pending):])
	f.timers = pending
}

// Pending reports how many timers are armed and not yet fired.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.timers)
}

// remove drops t from the armed timers and reports whether it was armed.
func (f *Fake) remove(t *fakeTimer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, timer := range f.timers {
		if timer == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)

			return true
		}
	}

	return false
}

// fakeTimer is a one-shot timer driven by Fake.
type fakeTimer struct {
	owner    *Fake
	deadline time.Time
	ch       chan time.Time
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool { return t.owner.remove(t) }
