package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"retention/internal/cli"
	"retention/internal/config"
	"retention/internal/dataset"
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
		seed    int64
		dataDir string
	)

	cmd := &cobra.Command{
		Use:          "retention-data",
		Short:        "Write the student retention datasets",
		Long:         `Builds the retention KPI, student composition, campus retention, monthly withdrawal and reason tables and writes them to the data directory.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", dataset.DefaultSeed, "seed recorded with the run (env SEED)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory the datasets are written to (env DATA_DIR)")
	return cmd
}

func run(ctx context.Context, out io.Writer, cfg *config.Config) error {
	logger, err := cli.SetupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	var snapshots services.SnapshotStore
	if cfg.SnapshotEnabled() {
		repo, err := cli.OpenSnapshotStore(logger, cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		defer repo.Close()
		snapshots = repo
	}

	var publisher services.Publisher
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	store := dataset.NewFileStore(cfg.DataDir, logger)
	report, err := services.NewGenerateService(store, cfg.DataDir, snapshots, publisher, logger).Run(ctx, cfg.Seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Data generation complete. Files saved in %q:\n", cfg.DataDir)
	for _, a := range report.Artifacts {
		fmt.Fprintf(out, "- %s\n", a.Name)
	}
	return nil
}
