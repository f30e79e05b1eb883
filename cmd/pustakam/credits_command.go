package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pustakam/internal/api"
)

func newCreditsCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	var limit int
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Show the credit balance and recent ledger entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				status, err := svc.Credits(ctx, limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, status)
				}
				if !status.Enabled {
					cmd.Println("Credit gate is disabled; generation starts are not metered.")
				}
				cmd.Printf("Balance: %d credits\n", status.Balance)
				if len(status.History) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(status.History))
				for _, entry := range status.History {
					rows = append(rows, []string{
						entry.CreatedAt.Local().Format("2006-01-02 15:04"),
						fmt.Sprintf("%+d", entry.Delta),
						entry.Reason,
						entry.BookID,
					})
				}
				cmd.Println(renderTable(
					[]string{"When", "Delta", "Reason", "Book"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of ledger entries to show")
	return cmd
}
