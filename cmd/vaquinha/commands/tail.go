package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	redisadapter "vaquinha/internal/adapter/redis"
	"vaquinha/internal/core/domain"
	"vaquinha/internal/notify"
)

// tailCmd prints events from the Redis stream the server publishes to.
func tailCmd() *cobra.Command {
	var (
		since    int64
		campaign string
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow campaign events published to the Redis stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := redisadapter.NewClient(ctx, cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis connection: %w", err)
			}
			defer client.Close()

			// replay the stream when a start point is given, else only new entries
			lastID := "$"
			if since > 0 {
				lastID = "0"
			}
			cursor := notify.NewCursor(since)
			out := cmd.OutOrStdout()
			reader := redisadapter.NewReader(client, cfg.Redis.Stream, logger)
			err = reader.Follow(ctx, lastID, func(e domain.Event) error {
				if !cursor.Accept(e.Seq) {
					return nil
				}
				if campaign != "" && e.CampaignID.String() != campaign {
					return nil
				}
				_, err := fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", e.Seq, e.Type, e.CampaignID, e.Actor, e.Amount)
				return err
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Int64Var(&since, "since", 0, "first event sequence to print (default: new events only)")
	cmd.Flags().StringVar(&campaign, "campaign", "", "only print events of this campaign")
	return cmd
}
