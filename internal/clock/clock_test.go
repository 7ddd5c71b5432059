package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, time.January, 1, 6, 0, 0, 0, time.UTC)

// TestFake_TimerFiresOnAdvance checks timers stay silent until their deadline is reached.
func TestFake_TimerFiresOnAdvance(t *testing.T) {
	t.Parallel()

	c := NewFake(start)
	timer := c.NewTimer(time.Hour)

	c.Advance(59 * time.Minute)

	select {
	case <-timer.C():
		t.Fatal("timer fired early")
	default:
	}

	require.Equal(t, 1, c.Pending())

	c.Advance(time.Minute)

	select {
	case fired := <-timer.C():
		require.Equal(t, start.Add(time.Hour), fired)
	default:
		t.Fatal("timer did not fire")
	}

	require.Zero(t, c.Pending())
}

// TestFake_NonPositiveDurationFiresImmediately mirrors time.NewTimer(0).
func TestFake_NonPositiveDurationFiresImmediately(t *testing.T) {
	t.Parallel()

	c := NewFake(start)
	timer := c.NewTimer(-time.Second)

	select {
	case <-timer.C():
	default:
		t.Fatal("timer did not fire")
	}

	require.Zero(t, c.Pending())
}

// TestFake_Stop verifies a stopped timer is disarmed and never fires.
func TestFake_Stop(t *testing.T) {
	t.Parallel()

	c := NewFake(start)
	timer := c.NewTimer(time.Minute)

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	c.Set(start.Add(time.Hour))
	require.Equal(t, start.Add(time.Hour), c.Now())

	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	default:
	}
}

// TestReal_NewTimer is a smoke test for the time-backed clock.
func TestReal_NewTimer(t *testing.T) {
	t.Parallel()

	var c Clock = Real{}

	timer := c.NewTimer(time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}

	require.WithinDuration(t, time.Now(), c.Now(), time.Second)
}
