package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subcast/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.Check(deps.Requirements(cfg.Tools))

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				available := "missing"
				detail := status.Detail
				if status.Available {
					available = "ok"
					detail = status.Command
				}
				rows = append(rows, []string{
					status.Name,
					available,
					detail,
					status.Description,
				})
			}
			out := cmd.OutOrStdout()
			headers := []string{"Tool", "Status", "Detail", "Purpose"}
			fmt.Fprintln(out, renderTable(headers, rows))

			if !deps.AllRequired(statuses) {
				return fmt.Errorf("required tools are missing")
			}
			return nil
		},
	}
}
