package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var (
	rootCmd = &cobra.Command{
		Use:           "worker",
		Short:         "Procurement back-office maintenance jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if logger, err = logging.New(cfg.Log); err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the configured application version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.App.ServiceName, cfg.App.Version)
		},
	}
)

func init() {
	rootCmd.AddCommand(versionCmd, outboxCmd, profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDuplicates) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
