package cli

import (
	"fmt"

	"alyabot/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStore()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Store.Backend != config.BackendPostgres {
				return fmt.Errorf("migrate needs STORE_BACKEND=%s, got %q", config.BackendPostgres, cfg.Store.Backend)
			}

			db, err := connectDatabase(cmd.Context(), cfg.DSN(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return runMigrations(db, cfg.Database.Migrations, logger)
		},
	}
}
