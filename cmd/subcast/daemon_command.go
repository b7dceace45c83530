package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subcast/internal/daemon"
	"subcast/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run pipeline passes on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewForDir(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			coordinator, closeLedger, err := buildCoordinator(cfg, logger)
			if err != nil {
				return err
			}
			defer closeLedger()

			d, err := daemon.New(cfg, coordinator, logger)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return d.Run(signalCtx)
		},
	}
}
