package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subcast/internal/runlog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent pipeline run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ledger, err := runlog.Open(cfg.RunLogPath())
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer ledger.Close()

			recent, err := ledger.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read run history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(recent) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(recent))
			for _, summary := range recent {
				rows = append(rows, []string{
					summary.RunID,
					summary.StartedAt.Local().Format("2006-01-02 15:04:05"),
					summary.Duration().Round(timeDisplayPrecision).String(),
					strconv.Itoa(summary.Retried),
					strconv.Itoa(summary.Fresh),
					strconv.Itoa(summary.Succeeded),
					strconv.Itoa(summary.Failed),
					strconv.Itoa(summary.Skipped),
				})
			}
			headers := []string{"Run", "Started", "Duration", "Retried", "Fresh", "Succeeded", "Failed", "Skipped"}
			fmt.Fprintln(out, renderTable(headers, rows, 2, 3, 4, 5, 6, 7))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
