package integration

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/smart-alarm/internal/config"
	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
	"github.com/oshokin/smart-alarm/internal/service/client"
	"github.com/oshokin/smart-alarm/internal/service/common"
	"github.com/oshokin/smart-alarm/internal/service/server"
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startServer runs the full server against a temporary settings file.
// Returns the settings path and a stop function.
func startServer(t *testing.T, grpcAddr, httpAddr string) (string, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(
		t,
		config.Save(cfgPath, &config.Config{
			ServerAddress: grpcAddr,
			HTTPAddress:   httpAddr,
			Timeout:       5 * time.Second,
			LogLevel:      "error",
		}),
	)

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:    cfgPath,
			ListenAddress: grpcAddr,
		})
	}()

	// Wait for the gRPC port to accept connections.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", grpcAddr, 100*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	return cfgPath, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// TestServer_Roundtrip submits, lists and cancels alarms over gRPC.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	_, stop := startServer(t, addr, "")
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	tomorrow := time.Now().Add(48 * time.Hour).Format(domain.TimeLayout)

	result, err := c.SubmitAlarm(ctx, domain.Request{Time: tomorrow, Label: "Wake", Repeat: true})
	require.NoError(t, err)
	require.True(t, result.Submitted)
	require.Equal(t, tomorrow, result.FireTime)

	upcoming, err := c.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{tomorrow + " Wake (repeat)"}, upcoming)

	_, err = c.SubmitAlarm(ctx, domain.Request{Time: "tomorrow morning"})
	require.Error(t, err)

	cancelled, err := c.CancelAlarm(ctx, tomorrow)
	require.NoError(t, err)
	require.True(t, cancelled)

	cancelled, err = c.CancelAlarm(ctx, tomorrow)
	require.NoError(t, err)
	require.False(t, cancelled)

	upcoming, err = c.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Empty(t, upcoming)

	notifications, err := c.ListNotifications(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, notifications)
	require.Contains(t, notifications[0], "has been cancelled.")
}

// TestServer_OverdueAlarmFires checks that a past alarm fires straight away.
func TestServer_OverdueAlarmFires(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	_, stop := startServer(t, addr, "")
	defer stop()

	ctx := context.Background()

	c, err := common.Dial(ctx, addr)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	_, err = c.SubmitAlarm(ctx, domain.Request{Time: "2000-01-01T00:00", Label: "Late"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		notifications, err := c.ListNotifications(ctx)
		if err != nil || len(notifications) == 0 {
			return false
		}

		return strings.HasSuffix(notifications[0], "Your alarm with label Late is going off!")
	}, 3*time.Second, 20*time.Millisecond)

	upcoming, err := c.ListUpcoming(ctx)
	require.NoError(t, err)
	require.Empty(t, upcoming)
}

// TestClientCommands drives the CLI commands against a live server.
func TestClientCommands(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	cfgPath, stop := startServer(t, addr, "")
	defer stop()

	var out bytes.Buffer

	opts := &client.Options{ConfigPath: cfgPath, Out: &out}
	ctx := context.Background()
	tomorrow := time.Now().Add(48 * time.Hour).Format(domain.TimeLayout)

	require.NoError(t, client.List(ctx, opts))
	require.NoError(t, client.Set(ctx, opts, domain.Request{Time: tomorrow, Label: "Gym"}))
	require.NoError(t, client.List(ctx, opts))
	require.NoError(t, client.Cancel(ctx, opts, tomorrow))
	require.NoError(t, client.Cancel(ctx, opts, tomorrow))

	require.Equal(t, strings.Join([]string{
		"No alarms set.",
		"Alarm set: " + tomorrow + " Gym",
		tomorrow + " Gym",
		"Alarm at " + tomorrow + " cancelled",
		"No alarm is set for " + tomorrow,
	}, "\n")+"\n", out.String())
}

// TestServer_WebPage sets an alarm through the page form.
func TestServer_WebPage(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)
	httpAddr := reservePort(t)

	_, stop := startServer(t, addr, httpAddr)
	defer stop()

	base := "http://" + httpAddr

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz") //nolint:noctx // Test probe.
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusNoContent
	}, 3*time.Second, 20*time.Millisecond)

	tomorrow := time.Now().Add(48 * time.Hour).Format(domain.TimeLayout)

	resp, err := http.Get(base + "/?alarm=" + tomorrow + "&alarm_label=Standup") //nolint:noctx // Test request.
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), tomorrow+" Standup")

	resp, err = http.Get(base + "/?alarm=nonsense") //nolint:noctx // Test request.
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
