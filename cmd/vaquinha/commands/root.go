// Package commands implements the vaquinha command line. serve runs the
// HTTP ledger and tail follows its Redis event stream; migrate and seed
// prepare the database.
package commands

import (
	"errors"
	"log/slog"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"vaquinha/internal/config"
)

var (
	cfg    config.Config
	logger *slog.Logger

	backend string
)

// errSignal carries the exit code for a run stopped by a signal.
type errSignal struct{ sig syscall.Signal }

func (e errSignal) Error() string { return "stopped by " + e.sig.String() }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := &cobra.Command{
		Use:           "vaquinha",
		Short:         "Crowdfunding campaign ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration from environment variables.
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if backend != "" {
				cfg.Ledger.Backend = backend
				if _, err = cfg.Ledger.BackendName(); err != nil {
					return err
				}
			}
			logger = cfg.Log.NewLogger(os.Stdout).With(slog.String("env", cfg.Env))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&backend, "backend", "", "ledger backend: memory or postgres (overrides LEDGER_BACKEND)")

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), tailCmd())

	if err := root.Execute(); err != nil {
		var sig errSignal
		if errors.As(err, &sig) {
			return 128 + int(sig.sig)
		}
		if logger != nil {
			logger.Error("command failed", slog.Any("error", err))
		} else {
			slog.Error("command failed", slog.Any("error", err))
		}
		return 1
	}
	return 0
}
