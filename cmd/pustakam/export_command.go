package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pustakam/internal/api"
	"pustakam/internal/export"
)

func newExportCommand(cmdCtx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <book-id>",
		Short: "Export a book to markdown, plain text, or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := export.ParseFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q (markdown, text, pdf)", format)
			}
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				path, err := svc.ExportBook(ctx, args[0], parsed)
				if err != nil {
					return err
				}
				cmd.Printf("Exported to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Export format: markdown, text, or pdf")
	return cmd
}
