package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pustakam/internal/ipc"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon health and active generation sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, status)
				}
				printDaemonStatus(cmd, status)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func printDaemonStatus(cmd *cobra.Command, status *ipc.StatusResponse) {
	colorize := shouldColorize(cmd.OutOrStdout())
	for _, line := range renderSectionHeader("Pustakam Daemon", colorize) {
		cmd.Println(line)
	}
	cmd.Println(renderStatusLine("Daemon", statusOK,
		fmt.Sprintf("pid %d, up since %s", status.PID, status.StartedAt.Local().Format("2006-01-02 15:04:05")), colorize))
	cmd.Println(renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
	if status.LogPath != "" {
		cmd.Println(renderStatusLine("Log", statusInfo, status.LogPath, colorize))
	}
	if status.CreditsOn {
		kind := statusOK
		if status.CreditBalance <= 0 {
			kind = statusWarn
		}
		cmd.Println(renderStatusLine("Credits", kind, fmt.Sprintf("%d remaining", status.CreditBalance), colorize))
	} else {
		cmd.Println(renderStatusLine("Credits", statusInfo, "disabled", colorize))
	}
	if len(status.ActiveBooks) == 0 {
		cmd.Println(renderStatusLine("Generation", statusInfo, "idle", colorize))
	} else {
		cmd.Println(renderStatusLine("Generation", statusOK,
			fmt.Sprintf("%d active: %s", len(status.ActiveBooks), strings.Join(status.ActiveBooks, ", ")), colorize))
	}

	cmd.Println()
	for _, line := range renderSectionHeader("Checks", colorize) {
		cmd.Println(line)
	}
	for _, check := range status.Checks {
		kind := statusOK
		if !check.OK {
			kind = statusError
		}
		cmd.Println(renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
}
