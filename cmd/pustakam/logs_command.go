package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"pustakam/internal/logs"
)

func newLogsCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFilePath()

			lines, offset, err := logs.Tail(path, limit)
			if err != nil {
				return err
			}
			if len(lines) == 0 && !follow {
				cmd.Printf("No log lines yet at %s\n", path)
				return nil
			}
			for _, line := range lines {
				cmd.Println(line)
			}
			if !follow {
				return nil
			}

			err = logs.Follow(cmd.Context(), path, offset, func(line string) {
				cmd.Println(line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines as they arrive")
	return cmd
}
