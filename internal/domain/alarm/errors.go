package alarm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeFormat is matched by errors.Is for any input that fails TimeLayout.
	ErrInvalidTimeFormat = errors.New("invalid time format, expected YYYY-MM-DDTHH:MM")
	// ErrNotFound means no pending alarm matches a cancel request.
	ErrNotFound = errors.New("alarm not found")
	// ErrEmptyQueue is returned by peek and pop on an empty queue.
	ErrEmptyQueue = errors.New("alarm queue is empty")
	// ErrAlertFailed is matched by errors.Is for any AlertError.
	ErrAlertFailed = errors.New("alert failed")
)

// TimeFormatError describes an input rejected at the submission boundary.
type TimeFormatError struct {
	// Input is the rejected value.
	Input string
	// Err is the underlying parse error.
	Err error
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidTimeFormat, e.Input)
}

// Is lets errors.Is match ErrInvalidTimeFormat.
func (e *TimeFormatError) Is(target error) bool {
	return target == ErrInvalidTimeFormat
}

func (e *TimeFormatError) Unwrap() error {
	return e.Err
}

// AlertError reports that the notification sink failed for a fired alarm.
type AlertError struct {
	// Alarm is the alarm that fired.
	Alarm Alarm
	// Err is what the sink returned, or the recovered panic.
	Err error
}

func (e *AlertError) Error() string {
	return fmt.Sprintf("alert for %q at %s: %v", e.Alarm.Label, e.Alarm.FireTime.Format(TimeLayout), e.Err)
}

// Is lets errors.Is match ErrAlertFailed.
func (e *AlertError) Is(target error) bool {
	return target == ErrAlertFailed
}

func (e *AlertError) Unwrap() error {
	return e.Err
}
