package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
)

// errNoSpeechCommand is returned when a Speech sink has no command.
var errNoSpeechCommand = errors.New("speech command is empty")

// Speech speaks fired alarms through an external text-to-speech program,
// for example "espeak" or "say". The phrase is appended as the last argument.
type Speech struct {
	name string
	args []string
}

// NewSpeech parses a command line such as "espeak -v en".
func NewSpeech(command string) (*Speech, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errNoSpeechCommand
	}

	return &Speech{
		name: fields[0],
		args: fields[1:],
	}, nil
}

// Phrase is what gets spoken for a.
func Phrase(a domain.Alarm) string {
	return "Your alarm with label " + a.Label + " is going off."
}

// AlarmFired runs the speech program and waits for it to finish.
func (s *Speech) AlarmFired(ctx context.Context, a domain.Alarm) error {
	args := append(append([]string(nil), s.args...), Phrase(a))

	//nolint:gosec // The command comes from the operator's configuration file.
	cmd := exec.CommandContext(ctx, s.name, args...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", s.name, err, strings.TrimSpace(stderr.String()))
	}

	return nil
}

// AlarmCancelled is silent.
func (s *Speech) AlarmCancelled(context.Context, domain.Alarm) error {
	return nil
}
