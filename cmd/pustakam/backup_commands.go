package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pustakam/internal/api"
	"pustakam/internal/bookstore"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import library backups",
	}
	cmd.AddCommand(newBackupExportCommand(ctx))
	cmd.AddCommand(newBackupImportCommand(ctx))
	return cmd
}

func newBackupExportCommand(cmdCtx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole library to a backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				path, err := svc.BackupExport(ctx, output)
				if err != nil {
					return err
				}
				cmd.Printf("Backup written to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Backup file path (defaults to a timestamped file in the export directory)")
	return cmd
}

func newBackupImportCommand(cmdCtx *commandContext) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Restore books from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := bookstore.ParseImportMode(mode)
			if !ok {
				return fmt.Errorf("unknown import mode %q (merge or replace)", mode)
			}
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				result, err := svc.BackupImport(ctx, args[0], parsed)
				if err != nil {
					return err
				}
				cmd.Printf("Imported %d books", result.BooksImported)
				if result.BooksSkipped > 0 {
					cmd.Printf(", skipped %d already present", result.BooksSkipped)
				}
				cmd.Println()
				if result.SettingsTaken {
					cmd.Println("Settings were replaced from the backup.")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "merge", "Import mode: merge keeps local books, replace wipes them first")
	return cmd
}
