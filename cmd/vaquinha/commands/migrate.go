package commands

import (
	"github.com/spf13/cobra"

	"vaquinha/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return err
			}
			logger.Info("migrations applied successfully")
			return nil
		},
	}
}
