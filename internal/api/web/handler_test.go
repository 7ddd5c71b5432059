package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/smart-alarm/internal/briefing"
	"github.com/oshokin/smart-alarm/internal/clock"
	"github.com/oshokin/smart-alarm/internal/notify"
	"github.com/oshokin/smart-alarm/internal/service/scheduler"
)

// staticBriefing returns a fixed snapshot.
type staticBriefing briefing.Snapshot

func (s staticBriefing) Snapshot() briefing.Snapshot { return briefing.Snapshot(s) }

// newTestHandler wires a real scheduler and feed on a fake clock.
func newTestHandler(t *testing.T) (*Handler, *scheduler.Scheduler, *notify.Feed) {
	t.Helper()

	c := clock.NewFake(time.Date(2024, time.January, 1, 6, 30, 0, 0, time.UTC))
	feed := notify.NewFeed(c, 10)
	s := scheduler.New(scheduler.WithClock(c), scheduler.WithLocation(time.UTC), scheduler.WithSink(feed))

	brief := staticBriefing{
		Weather:   &briefing.Weather{Forecast: "Clear", Temp: 3},
		Headlines: []string{"#1: Headline"},
	}

	return NewHandler(s, feed, brief, c), s, feed
}

// get performs a GET with the given query.
func get(h http.Handler, query url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?"+query.Encode(), nil)
	h.ServeHTTP(rec, req)

	return rec
}

// TestHandler_SetAndCancel submits through the form and cancels again.
func TestHandler_SetAndCancel(t *testing.T) {
	t.Parallel()

	h, s, feed := newTestHandler(t)

	rec := get(h, url.Values{
		fieldAlarm:       {"2024-01-01T07:00"},
		fieldAlarmLabel:  {"Gym"},
		fieldAlarmRepeat: {"repeat"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Equal(t, []string{"2024-01-01T07:00 Gym (repeat)"}, s.UpcomingLines())

	rec = get(h, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "2024-01-01T07:00 Gym (repeat)")
	require.Contains(t, rec.Body.String(), "Last updated: 2024-01-01 06:30:00")
	require.Contains(t, rec.Body.String(), "Clear with an average temperature of 3°C.")
	require.Contains(t, rec.Body.String(), "#1: Headline")

	rec = get(h, url.Values{fieldCancelAlarm: {"2024-01-01T07:00"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Empty(t, s.UpcomingLines())
	require.Len(t, feed.List(), 1)
	require.Contains(t, feed.List()[0], "has been cancelled.")
}

// TestHandler_InvalidInput renders errors without touching the queue.
func TestHandler_InvalidInput(t *testing.T) {
	t.Parallel()

	h, s, _ := newTestHandler(t)

	rec := get(h, url.Values{fieldAlarm: {"tomorrow"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid time format")
	require.Zero(t, s.Len())

	rec = get(h, url.Values{fieldCancelAlarm: {"2024-01-01T09:00"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "No alarm is set for 2024-01-01T09:00.")
	require.Contains(t, rec.Body.String(), "No alarms set.")
}

// TestHandler_Healthz answers without content.
func TestHandler_Healthz(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
