package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "vaquinha/internal/adapter/http"
	"vaquinha/internal/app"
)

// serveCmd starts the HTTP server. On receiving a termination signal it
// gracefully shuts the server down and releases the ledger.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the campaign ledger HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					logger.Error("close error", slog.Any("error", err))
				}
			}()

			handler := httpadapter.NewHandler(a.UseCase, a.Hub, logger, cfg.HTTP.CallerHeader)
			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
				Handler: handler.Router(),
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			var stopErr error
			select {
			case value := <-quit:
				stopErr = errSignal{sig: value.(syscall.Signal)}
			case err, ok := <-serveErr:
				if ok {
					return fmt.Errorf("server error: %w", err)
				}
			}

			// Subscriptions hold SSE responses open; stop them first.
			a.Hub.Close()
			shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
			defer stop()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown error", slog.Any("error", err))
			} else {
				logger.Info("server gracefully stopped")
			}
			return stopErr
		},
	}
}
