package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subcast/internal/records"
	"subcast/internal/runlog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline state at a glance",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			running := false
			if _, err := os.Stat(cfg.PIDPath()); err == nil {
				running = true
			}
			kind := statusInfo
			message := "not running"
			if running {
				kind = statusOK
				message = "pid file present"
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", kind, message, colorize))

			store := records.NewStore(cfg.RecordsDir())
			all, invalid, err := store.List()
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Records", statusError, err.Error(), colorize))
			} else {
				var pending, succeeded, failed int
				for _, record := range all {
					switch record.Status {
					case records.StatusPending:
						pending++
					case records.StatusSucceeded:
						succeeded++
					case records.StatusFailed:
						failed++
					}
				}
				kind := statusOK
				if failed > 0 {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Records", kind,
					fmt.Sprintf("%d pending, %d succeeded, %d failed", pending, succeeded, failed), colorize))
				if len(invalid) > 0 {
					fmt.Fprintln(out, renderStatusLine("Record files", statusWarn,
						fmt.Sprintf("%d unreadable", len(invalid)), colorize))
				}
			}

			fmt.Fprintln(out, renderStatusLine("Sources", statusInfo,
				fmt.Sprintf("%d configured", len(cfg.Sources)), colorize))
			fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo,
				"configured: "+yesNo(cfg.Notifications.NtfyTopic != ""), colorize))

			ledger, err := runlog.Open(cfg.RunLogPath())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Last run", statusError, err.Error(), colorize))
				return nil
			}
			defer ledger.Close()
			recent, err := ledger.Recent(cmd.Context(), 1)
			switch {
			case err != nil:
				fmt.Fprintln(out, renderStatusLine("Last run", statusError, err.Error(), colorize))
			case len(recent) == 0:
				fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, "none recorded", colorize))
			default:
				last := recent[0]
				kind := statusOK
				if last.Failed > 0 {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Last run", kind,
					fmt.Sprintf("%s at %s (%d succeeded, %d failed)",
						last.RunID,
						last.StartedAt.Local().Format("2006-01-02 15:04"),
						last.Succeeded, last.Failed), colorize))
			}
			return nil
		},
	}
}
