package web

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/oshokin/smart-alarm/internal/briefing"
	"github.com/oshokin/smart-alarm/internal/clock"
	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
	"github.com/oshokin/smart-alarm/internal/logger"
)

// Form field names, kept compatible with the datetime-local form.
const (
	fieldAlarm       = "alarm"
	fieldAlarmLabel  = "alarm_label"
	fieldAlarmRepeat = "alarm_repeat"
	fieldCancelAlarm = "cancel_alarm"

	lastUpdatedLayout = "2006-01-02 15:04:05"
)

// Scheduler is what the page needs from the alarm scheduler.
type Scheduler interface {
	Submit(ctx context.Context, req domain.Request) (*domain.Handle, error)
	Cancel(ctx context.Context, timeString string) (bool, error)
	UpcomingLines() []string
}

// Notifications lists the feed, newest first.
type Notifications interface {
	List() []string
}

// Briefing supplies the latest weather and news.
type Briefing interface {
	Snapshot() briefing.Snapshot
}

// Handler renders the page.
type Handler struct {
	scheduler     Scheduler
	notifications Notifications
	briefing      Briefing
	clock         clock.Clock
	mux           *http.ServeMux
}

// NewHandler builds the page handler. notifications and briefing may be nil.
func NewHandler(scheduler Scheduler, notifications Notifications, brief Briefing, c clock.Clock) *Handler {
	if c == nil {
		c = clock.Real{}
	}

	h := &Handler{
		scheduler:     scheduler,
		notifications: notifications,
		briefing:      brief,
		clock:         c,
		mux:           http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /{$}", h.home)
	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// pageData feeds pageTemplate.
type pageData struct {
	LastUpdated   string
	Errors        []string
	Notifications []string
	Weather       string
	Headlines     []string
	Upcoming      []string
}

// home applies the form and renders the page. A successful change redirects
// back to a clean URL so reloading does not submit again.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "web")
	query := r.URL.Query()

	var errs []string

	request := domain.Request{
		Time:   query.Get(fieldAlarm),
		Label:  query.Get(fieldAlarmLabel),
		Repeat: query.Get(fieldAlarmRepeat) != "",
	}

	handle, err := h.scheduler.Submit(ctx, request)
	if err != nil {
		errs = append(errs, err.Error())
	}

	changed := handle != nil

	if cancelTime := query.Get(fieldCancelAlarm); cancelTime != "" {
		cancelled, err := h.scheduler.Cancel(ctx, cancelTime)

		switch {
		case err != nil:
			errs = append(errs, err.Error())
		case !cancelled:
			errs = append(errs, "No alarm is set for "+cancelTime+".")
		default:
			changed = true
		}
	}

	if changed && len(errs) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)

		return
	}

	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusBadRequest
	}

	h.render(ctx, w, status, errs)
}

// render writes the page with the given status.
func (h *Handler) render(ctx context.Context, w http.ResponseWriter, status int, errs []string) {
	data := pageData{
		LastUpdated: h.clock.Now().Format(lastUpdatedLayout),
		Errors:      errs,
		Upcoming:    h.scheduler.UpcomingLines(),
	}

	if h.notifications != nil {
		data.Notifications = h.notifications.List()
	}

	if h.briefing != nil {
		snapshot := h.briefing.Snapshot()
		if snapshot.Weather != nil {
			data.Weather = snapshot.Weather.Summary()
		}

		data.Headlines = snapshot.Headlines
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logger.ErrorKV(ctx, "Render page failed", "error", err)
		http.Error(w, "unable to render page", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}

//nolint:gochecknoglobals // Parsed once at startup.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Smart Alarm Clock</title>
</head>
<body>
<h1>Smart Alarm Clock</h1>
<p>Last updated: {{.LastUpdated}}</p>
{{range .Errors}}<p class="error">{{.}}</p>
{{end}}
<form method="get" action="/">
<input type="datetime-local" name="alarm">
<input type="text" name="alarm_label" placeholder="Label">
<label><input type="checkbox" name="alarm_repeat" value="repeat"> Repeat daily</label>
<button type="submit">Set alarm</button>
</form>
<form method="get" action="/">
<input type="datetime-local" name="cancel_alarm">
<button type="submit">Cancel alarm</button>
</form>
<h2>Upcoming alarms</h2>
<ul>
{{range .Upcoming}}<li>{{.}}</li>
{{else}}<li>No alarms set.</li>
{{end}}</ul>
<h2>Notifications</h2>
<ul>
{{range .Notifications}}<li>{{.}}</li>
{{end}}</ul>
{{if .Weather}}<h2>Weather</h2>
<p>{{.Weather}}</p>
{{end}}{{if .Headlines}}<h2>Headlines</h2>
<ul>
{{range .Headlines}}<li>{{.}}</li>
{{end}}</ul>
{{end}}</body>
</html>
`))
