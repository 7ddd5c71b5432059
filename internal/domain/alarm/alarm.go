package alarm

import (
	"strings"
	"time"
)

const (
	// TimeLayout is the only accepted input format, as produced by an HTML
	// datetime-local field. It is also used to display fire times.
	TimeLayout = "2006-01-02T15:04"

	// RepeatInterval is how far a repeating alarm is pushed after it fires.
	RepeatInterval = 24 * time.Hour

	// RepeatMarker suffixes repeating alarms in the upcoming list.
	RepeatMarker = "repeat"
)

// Handle uniquely identifies a pending alarm.
type Handle struct {
	// FireTime is when the alarm is due.
	FireTime time.Time
	// Sequence orders alarms sharing the same FireTime, first inserted first.
	Sequence uint64
}

// Less reports whether h is due before other.
func (h Handle) Less(other Handle) bool {
	if !h.FireTime.Equal(other.FireTime) {
		return h.FireTime.Before(other.FireTime)
	}

	return h.Sequence < other.Sequence
}

// Alarm is a pending alarm.
type Alarm struct {
	Handle

	// Label is free text shown in the list and spoken when the alarm fires.
	Label string
	// Repeat re-arms the alarm RepeatInterval after it fires.
	Repeat bool
}

// Next returns the alarm that replaces a, once fired, for repeating alarms.
// The sequence is left zero for the queue to assign.
func (a Alarm) Next() Alarm {
	return Alarm{
		Handle: Handle{FireTime: a.FireTime.Add(RepeatInterval)},
		Label:  a.Label,
		Repeat: a.Repeat,
	}
}

// Display renders a as "<time> <label>", suffixed with " (repeat)" when repeating.
// The time is rendered in loc; a nil loc means time.Local.
func (a Alarm) Display(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder

	b.WriteString(a.FireTime.In(loc).Format(TimeLayout))

	if a.Label != "" {
		b.WriteByte(' ')
		b.WriteString(a.Label)
	}

	if a.Repeat {
		b.WriteString(" (" + RepeatMarker + ")")
	}

	return b.String()
}

// DisplayLines renders every alarm with Display, keeping the order.
func DisplayLines(alarms []Alarm, loc *time.Location) []string {
	lines := make([]string, 0, len(alarms))
	for _, a := range alarms {
		lines = append(lines, a.Display(loc))
	}

	return lines
}

// FormatList joins DisplayLines with newlines.
func FormatList(alarms []Alarm, loc *time.Location) string {
	return strings.Join(DisplayLines(alarms, loc), "\n")
}

// ParseTime parses s in TimeLayout as wall-clock time in loc.
// Empty input reports ok=false without error: nothing was submitted.
func ParseTime(s string, loc *time.Location) (t time.Time, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}

	if loc == nil {
		loc = time.Local
	}

	t, err = time.ParseInLocation(TimeLayout, s, loc)
	if err != nil {
		return time.Time{}, false, &TimeFormatError{Input: s, Err: err}
	}

	return t, true, nil
}

// Request is a raw alarm submission, validated by the scheduler.
type Request struct {
	// Time is the fire time in TimeLayout. Empty means nothing was submitted.
	Time string
	// Label is optional display text.
	Label string
	// Repeat re-arms the alarm every day.
	Repeat bool
}

// Actor identifies who sent a request, for the logs.
type Actor struct {
	// Hostname is the machine the request came from.
	Hostname string
	// Username is the system user who sent it.
	Username string
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}
