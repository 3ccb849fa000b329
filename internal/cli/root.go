package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Execute runs the CLI until the command returns or the process is signalled.
func Execute(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd(logger).ExecuteContext(ctx)
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "alyabot",
		Short:        "Telegram bot for learning English words with Arabic meanings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return nil
			}
			return os.Setenv("CONFIG_FILE", configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), logger)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to YAML config")
	cmd.AddCommand(newServeCmd(logger))
	cmd.AddCommand(newMigrateCmd(logger))
	cmd.AddCommand(newWordsCmd(logger))
	return cmd
}

// NewLogger builds the process logger for a LOG_LEVEL value
func NewLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
