package commands

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"vaquinha/internal/app"
	"vaquinha/internal/db"
)

func seedCmd() *cobra.Command {
	var (
		count int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo campaigns, donations and withdrawals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			if err = db.Seed(cmd.Context(), a.UseCase, rand.New(rand.NewSource(seed)), count); err != nil {
				return err
			}
			logger.Info("seed complete", slog.Int("campaigns", count), slog.Int64("seed", seed))
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "campaigns", 5, "number of campaigns to create")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")
	return cmd
}
