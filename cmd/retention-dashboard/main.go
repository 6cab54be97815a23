package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"retention/internal/backend"
	"retention/internal/cli"
	"retention/internal/config"
	"retention/internal/services"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dataDir     string
		out         string
		backendName string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:          "retention-dashboard",
		Short:        "Render the student retention dashboard",
		Long:         `Reads the retention datasets and writes a self-contained four panel HTML dashboard. With --watch it re-renders whenever a new dataset run is announced over AMQP.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if cmd.Flags().Changed("backend") {
				cfg.DataBackend = backendName
			}
			if cmd.Flags().Changed("out") {
				cfg.OutputDir = filepath.Dir(out)
				cfg.DashboardFile = filepath.Base(out)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, watch)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory the datasets are read from (env DATA_DIR)")
	cmd.Flags().StringVar(&out, "out", filepath.Join("outputs", "retention_dashboard_preview.html"), "dashboard file (env OUTPUT_DIR and DASHBOARD_FILE)")
	cmd.Flags().StringVar(&backendName, "backend", "files", "dataset source: files or sqlite (env DATA_BACKEND)")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-render on every datasets generated event (needs AMQP_URL)")
	return cmd
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, watch bool) error {
	logger, err := cli.SetupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	source, err := backend.NewFactory(logger).CreateSource(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer source.Close()

	svc := services.NewRenderService(source.Source, cfg.DashboardPath(), logger)
	path, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Dashboard written to %s\n", path)

	if !watch {
		return nil
	}

	client, err := cli.RequireAMQP(logger, cfg)
	if err != nil {
		return err
	}
	defer client.Close()
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func() { client.Close() })
	if err := svc.Watch(ctx, client); err != nil {
		return err
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}
