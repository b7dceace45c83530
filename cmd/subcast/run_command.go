package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"subcast/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewForDir(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another subcast instance holds %s", cfg.LockPath())
			}
			defer lock.Unlock()

			coordinator, closeLedger, err := buildCoordinator(cfg, logger)
			if err != nil {
				return err
			}
			defer closeLedger()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := coordinator.Run(signalCtx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration().Round(timeDisplayPrecision))
			fmt.Fprintf(out, "  retried %d, fresh %d, succeeded %d, failed %d, skipped %d\n",
				summary.Retried, summary.Fresh, summary.Succeeded, summary.Failed, summary.Skipped)
			return nil
		},
	}
}
