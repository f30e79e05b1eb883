package main

import (
	"github.com/spf13/cobra"

	"pustakam/internal/ipc"
)

func newModuleCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Re-run individual book modules",
	}
	cmd.AddCommand(newModuleRetryCommand(ctx))
	cmd.AddCommand(newModuleRegenerateCommand(ctx))
	return cmd
}

func newModuleRetryCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <book-id> <module-id>",
		Short: "Retry a failed module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withClient(func(client *ipc.Client) error {
				if _, err := client.ModuleRetry(args[0], args[1]); err != nil {
					return err
				}
				cmd.Printf("Retrying module %s\n", args[1])
				return nil
			})
		},
	}
}

func newModuleRegenerateCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "regenerate <book-id> <module-id>",
		Aliases: []string{"regen"},
		Short:   "Regenerate a completed module; existing content is kept if the attempt fails",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withClient(func(client *ipc.Client) error {
				if _, err := client.ModuleRegenerate(args[0], args[1]); err != nil {
					return err
				}
				cmd.Printf("Regenerating module %s\n", args[1])
				return nil
			})
		},
	}
}
