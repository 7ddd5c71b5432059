package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/smart-alarm/internal/config"
	domain "github.com/oshokin/smart-alarm/internal/domain/alarm"
	"github.com/oshokin/smart-alarm/internal/service/client"
	"github.com/oshokin/smart-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides server_addr from the configuration.
	serverAddress string
	// label for alarms created by set.
	label string
	// repeat makes alarms created by set daily.
	repeat bool

	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Manage alarms on a running alarm-clock-server.",
		Long: `Sets, cancels and lists alarms on the smart alarm clock.

Times use the local format YYYY-MM-DDTHH:MM, for example 2024-05-01T07:30.
Server address is loaded from configuration file unless --server is given.`,
		SilenceUsage: true,
	}

	setCmd = &cobra.Command{
		Use:   "set <time>",
		Short: "Schedule an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.Set(ctx, options(c), domain.Request{
					Time:   args[0],
					Label:  label,
					Repeat: repeat,
				})
			})
		},
	}

	cancelCmd = &cobra.Command{
		Use:   "cancel <time>",
		Short: "Cancel the alarm set for a time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.Cancel(ctx, options(c), args[0])
			})
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Show upcoming alarms.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.List(ctx, options(c))
			})
		},
	}

	notificationsCmd = &cobra.Command{
		Use:   "notifications",
		Short: "Show recent notifications, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withSignals(func(ctx context.Context) error {
				return client.Notifications(ctx, options(c))
			})
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func options(c *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Out:           c.OutOrStdout(),
	}
}

func withSignals(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return fn(ctx)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "server address, overrides server_addr")

	setCmd.Flags().StringVarP(&label, "label", "l", "", "label spoken when the alarm goes off")
	setCmd.Flags().BoolVarP(&repeat, "repeat", "r", false, "repeat the alarm every day")

	rootCmd.AddCommand(setCmd, cancelCmd, listCmd, notificationsCmd)
}
