package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	vsync "github.com/stacklok/vsync-reactor/internal/app"
	"github.com/stacklok/vsync-reactor/internal/config"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the vsync daemon",
		Long: `Run the vsync daemon for one display.

The daemon requires a configuration file (--config) that specifies:
- the display refresh period and vsync spacing
- the listeners and their phase offsets
- the software vsync source and telemetry settings

Changes to the configuration file are applied while the daemon runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	for _, name := range []string{"address", "config"} {
		if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			slog.Error("Failed to bind flag", "flag", name, "error", err)
		}
	}
	if err := cmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
	}

	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := v.GetString("config")
	cm, err := config.NewConfigManager(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := cm.GetConfig()
	slog.Info("Loaded configuration",
		"path", configPath,
		"display", cfg.GetDisplayName(),
		"period", cfg.Display.Period,
		"listeners", len(cfg.Listeners))

	vsyncApp, err := vsync.NewVsyncApp(ctx,
		vsync.WithConfigManager(cm),
		vsync.WithAddress(v.GetString("address")),
	)
	if err != nil {
		_ = cm.Close()
		return fmt.Errorf("failed to create vsync app: %w", err)
	}

	return vsyncApp.Start(ctx)
}
