package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/smart-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/smart-alarm/internal/api/web"
	"github.com/oshokin/smart-alarm/internal/briefing"
	"github.com/oshokin/smart-alarm/internal/clock"
	"github.com/oshokin/smart-alarm/internal/config"
	"github.com/oshokin/smart-alarm/internal/logger"
	"github.com/oshokin/smart-alarm/internal/notify"
	"github.com/oshokin/smart-alarm/internal/service/scheduler"
	"github.com/oshokin/smart-alarm/internal/version"
)

// Options controls the alarm-clock-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress overrides the web page address from the settings.
	HTTPAddress string
	// DisableWatch turns off reloading the settings file.
	DisableWatch bool
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// shutdownTimeout bounds the web server shutdown.
const shutdownTimeout = 5 * time.Second

// Run starts every component and blocks until ctx is cancelled or one of them fails.
//
//nolint:funlen // Wiring reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-clock-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	closeLog, err := logger.Setup(settings.LogLevel, settings.LogFile)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	defer func() {
		_ = closeLog()
	}()

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	httpAddress := settings.HTTPAddress
	if opts.HTTPAddress != "" {
		httpAddress = opts.HTTPAddress
	}

	wallClock := clock.Real{}
	feed := notify.NewFeed(wallClock, settings.NotificationsLimit)

	sink, err := buildSink(settings, feed)
	if err != nil {
		return err
	}

	sched := scheduler.New(
		scheduler.WithClock(wallClock),
		scheduler.WithSink(sink),
		scheduler.WithAlertFailureHandler(func(_ context.Context, err error) {
			feed.Add("Alarm alert failed: " + err.Error())
		}),
	)

	var refresher *briefing.Refresher
	if settings.Briefing.Enabled() {
		refresher = briefing.NewRefresher(newBriefingClient(settings), feed, wallClock)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterAlarmClockServer(grpcServer, api.NewServer(sched, feed))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	logger.InfoKV(ctx, "Smart alarm clock started",
		"version", version.Short(),
		"listen_address", listenAddress,
		"http_address", httpAddress,
		"briefing", refresher != nil,
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return sched.Run(groupCtx)
	})

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		healthServer.Shutdown()
		grpcServer.GracefulStop()

		return nil
	})

	if httpAddress != "" {
		startWeb(ctx, groupCtx, group, httpAddress, web.NewHandler(sched, feed, briefingView(refresher), wallClock))
	}

	if refresher != nil {
		group.Go(func() error {
			return refresher.Run(groupCtx, settings.Briefing.Refresh)
		})
	}

	if !opts.DisableWatch {
		group.Go(func() error {
			return config.Watch(groupCtx, opts.ConfigPath, func(cfg *config.Config) {
				applyLogLevel(ctx, cfg.LogLevel)
			})
		})
	}

	err = group.Wait()

	logger.Info(ctx, "Smart alarm clock stopped")

	return err
}

// buildSink assembles the notification sinks from settings.
//
//nolint:ireturn // The scheduler consumes the Sink interface.
func buildSink(settings *config.Config, feed *notify.Feed) (notify.Sink, error) {
	sinks := notify.Multi{notify.Log{}, feed}

	if settings.SpeechCommand != "" {
		speech, err := notify.NewSpeech(settings.SpeechCommand)
		if err != nil {
			return nil, fmt.Errorf("speech command: %w", err)
		}

		sinks = append(sinks, speech)
	}

	return sinks, nil
}

// newBriefingClient maps the settings onto briefing client options.
func newBriefingClient(settings *config.Config) *briefing.Client {
	b := settings.Briefing

	return briefing.NewClient(briefing.Options{
		WeatherAPIKey:     b.WeatherAPIKey,
		NewsAPIKey:        b.NewsAPIKey,
		City:              b.City,
		Country:           b.Country,
		Headlines:         b.Headlines,
		RequestsPerMinute: b.RequestsPerMinute,
		Timeout:           settings.Timeout,
	})
}

// briefingView avoids handing the page a typed nil.
//
//nolint:ireturn // web.Briefing is optional.
func briefingView(r *briefing.Refresher) web.Briefing {
	if r == nil {
		return nil
	}

	return r
}

// startWeb serves the page on address until groupCtx is done.
func startWeb(ctx, groupCtx context.Context, group *errgroup.Group, address string, handler http.Handler) {
	httpServer := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: shutdownTimeout,
	}

	group.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve web page: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down web server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})
}

// applyLogLevel switches the global level after a settings reload.
func applyLogLevel(ctx context.Context, levelName string) {
	level, ok := logger.ParseLogLevel(levelName)
	if !ok || level == logger.Level() {
		return
	}

	logger.SetLevel(level)
	logger.InfoKV(ctx, "Log level changed", "level", level.String())
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
