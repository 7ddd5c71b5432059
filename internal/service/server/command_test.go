package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/smart-alarm/internal/clock"
	"github.com/oshokin/smart-alarm/internal/config"
	"github.com/oshokin/smart-alarm/internal/notify"
)

// TestResolveListenAddress covers overrides and port extraction.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("alarm.local:8080", "")
	require.NoError(t, err)
	require.Equal(t, ":8080", addr)

	addr, err = resolveListenAddress("alarm.local:8080", "127.0.0.1:9000")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

// TestBuildSink adds speech only when a command is configured.
func TestBuildSink(t *testing.T) {
	t.Parallel()

	feed := notify.NewFeed(clock.NewFake(clock.Real{}.Now()), 0)

	sink, err := buildSink(&config.Config{}, feed)
	require.NoError(t, err)
	require.Len(t, sink, 2)

	sink, err = buildSink(&config.Config{SpeechCommand: "espeak -v en"}, feed)
	require.NoError(t, err)
	require.Len(t, sink, 3)
}

// TestRun_MissingSettings fails before anything starts.
func TestRun_MissingSettings(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	require.ErrorContains(t, err, "load settings")
}
