package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/oshokin/smart-alarm/internal/config"
	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
	"github.com/oshokin/smart-alarm/internal/logger"
	"github.com/oshokin/smart-alarm/internal/service/common"
)

// Options configures how the client reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives the command output. Defaults to os.Stdout.
	Out io.Writer
}

// errNoTime is returned when set or cancel is called without a time.
var errNoTime = errors.New("alarm time must be provided as YYYY-MM-DDTHH:MM")

// Set submits an alarm and prints its normalized fire time.
func Set(ctx context.Context, opts *Options, req domain.Request) error {
	if strings.TrimSpace(req.Time) == "" {
		return errNoTime
	}

	return withClient(ctx, opts, func(ctx context.Context, client *common.Client, out io.Writer) error {
		result, err := client.SubmitAlarm(ctx, req)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Alarm submitted", "fire_time", result.FireTime, "sequence", result.Sequence)

		_, err = fmt.Fprintln(out, "Alarm set:", describe(result.FireTime, req))

		return err
	})
}

// Cancel cancels one alarm due at timeString.
func Cancel(ctx context.Context, opts *Options, timeString string) error {
	if strings.TrimSpace(timeString) == "" {
		return errNoTime
	}

	return withClient(ctx, opts, func(ctx context.Context, client *common.Client, out io.Writer) error {
		cancelled, err := client.CancelAlarm(ctx, timeString)
		if err != nil {
			return err
		}

		if !cancelled {
			_, err = fmt.Fprintf(out, "No alarm is set for %s\n", timeString)

			return err
		}

		_, err = fmt.Fprintf(out, "Alarm at %s cancelled\n", timeString)

		return err
	})
}

// List prints the upcoming alarms, one per line.
func List(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(ctx context.Context, client *common.Client, out io.Writer) error {
		lines, err := client.ListUpcoming(ctx)
		if err != nil {
			return err
		}

		return printLines(out, lines, "No alarms set.")
	})
}

// Notifications prints the notification feed, newest first.
func Notifications(ctx context.Context, opts *Options) error {
	return withClient(ctx, opts, func(ctx context.Context, client *common.Client, out io.Writer) error {
		lines, err := client.ListNotifications(ctx)
		if err != nil {
			return err
		}

		return printLines(out, lines, "No notifications.")
	})
}

// withClient loads settings, dials the server and runs fn.
func withClient(
	ctx context.Context,
	opts *Options,
	fn func(ctx context.Context, client *common.Client, out io.Writer) error,
) error {
	ctx = logger.WithName(ctx, "alarm-clock")

	cfg, err := loadSettings(opts)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	clientOptions := []common.Option{common.WithCallTimeout(cfg.Timeout)}

	// The actor is informational; a failed lookup must not block the request.
	if actor, err := common.DetectActor(); err == nil {
		clientOptions = append(clientOptions, common.WithActor(actor))
	} else {
		logger.WarnKV(ctx, "Unable to detect actor", "error", err)
	}

	client, err := common.Dial(ctx, serverAddress, clientOptions...)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return fn(ctx, client, out)
}

// loadSettings reads the settings file. A missing file is fine when the
// server address is given explicitly.
func loadSettings(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err == nil {
		return cfg, nil
	}

	if opts.ServerAddress == "" || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfg = &config.Config{ServerAddress: opts.ServerAddress}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("server address: %w", err)
	}

	return cfg, nil
}

// describe renders a submitted alarm the way the upcoming list does.
func describe(fireTime string, req domain.Request) string {
	line := fireTime

	if req.Label != "" {
		line += " " + req.Label
	}

	if req.Repeat {
		line += " (" + domain.RepeatMarker + ")"
	}

	return line
}

// printLines writes lines or the fallback when there are none.
func printLines(out io.Writer, lines []string, empty string) error {
	if len(lines) == 0 {
		lines = []string{empty}
	}

	_, err := fmt.Fprintln(out, strings.Join(lines, "\n"))

	return err
}
