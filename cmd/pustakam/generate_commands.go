package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pustakam/internal/ipc"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Control book generation on the daemon",
	}
	cmd.AddCommand(newGenerateStartCommand(ctx))
	cmd.AddCommand(newGeneratePauseCommand(ctx))
	cmd.AddCommand(newGenerateStatusCommand(ctx))
	return cmd
}

func newGenerateStartCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start <book-id>",
		Short: "Start or resume generating a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withClient(func(client *ipc.Client) error {
				if _, err := client.GenerateStart(args[0]); err != nil {
					return err
				}
				cmd.Printf("Generation started for book %s\n", args[0])
				cmd.Printf("Follow progress with 'pustakam generate status %s'.\n", args[0])
				return nil
			})
		},
	}
}

func newGeneratePauseCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <book-id>",
		Short: "Pause generation; completed modules are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withClient(func(client *ipc.Client) error {
				if _, err := client.GeneratePause(args[0]); err != nil {
					return err
				}
				cmd.Printf("Generation paused for book %s\n", args[0])
				return nil
			})
		},
	}
}

func newGenerateStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status <book-id>",
		Short: "Show generation progress for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withClient(func(client *ipc.Client) error {
				resp, err := client.BookStatus(args[0], false)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp.Book)
				}
				b := resp.Book
				state := b.Status
				if b.Active {
					state += " (session running)"
				}
				cmd.Printf("%s: %s, %d/%d modules completed\n", b.Title, state, b.Completed, b.Total)
				colorize := shouldColorize(cmd.OutOrStdout())
				for _, m := range b.Modules {
					label := fmt.Sprintf("%d. %s", m.OrderIndex+1, m.Title)
					cmd.Println(renderStatusLine(label, moduleStatusKind(m.Status), m.ErrorMessage, colorize))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
