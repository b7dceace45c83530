package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subcast/internal/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List per-item processing records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := records.NewStore(cfg.RecordsDir())
			all, invalid, err := store.List()
			if err != nil {
				return fmt.Errorf("list records: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, name := range invalid {
				fmt.Fprintf(out, "warning: skipping unreadable record file %s\n", name)
			}

			filter, err := parseStatusFilter(statusFilter)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(all))
			for _, record := range all {
				if filter != "" && record.Status != filter {
					continue
				}
				rows = append(rows, []string{
					record.ItemID,
					record.SourceID,
					string(record.Status),
					record.Step,
					strconv.Itoa(record.Attempts),
					record.UpdatedAt.Local().Format("2006-01-02 15:04"),
					truncateCell(record.LastError, 48),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No records found")
				return nil
			}
			headers := []string{"Item", "Source", "Status", "Step", "Attempts", "Updated", "Last Error"}
			fmt.Fprintln(out, renderTable(headers, rows, 4))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (pending, succeeded, failed)")
	return cmd
}

func parseStatusFilter(value string) (records.Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case "pending":
		return records.StatusPending, nil
	case "succeeded":
		return records.StatusSucceeded, nil
	case "failed":
		return records.StatusFailed, nil
	default:
		return "", fmt.Errorf("unknown status %q (expected pending, succeeded, or failed)", value)
	}
}

func truncateCell(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
