package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pustakam/internal/api"
)

func newBookmarkCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark",
		Short: "Save and restore a per-book reading position",
	}
	cmd.AddCommand(newBookmarkSetCommand(ctx))
	cmd.AddCommand(newBookmarkShowCommand(ctx))
	cmd.AddCommand(newBookmarkClearCommand(ctx))
	return cmd
}

func newBookmarkSetCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <book-id> <module-id> [offset]",
		Short: "Save the reading position inside a module",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset := 0
			if len(args) == 3 {
				parsed, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("offset must be a number: %w", err)
				}
				offset = parsed
			}
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				bookmark, err := svc.SetBookmark(ctx, args[0], args[1], offset)
				if err != nil {
					return err
				}
				cmd.Printf("Bookmark saved at %q, offset %d\n", bookmark.ModuleTitle, bookmark.Offset)
				return nil
			})
		},
	}
	return cmd
}

func newBookmarkShowCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show the saved reading position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				bookmark, err := svc.GetBookmark(ctx, args[0])
				if err != nil {
					return err
				}
				if bookmark == nil {
					cmd.Println("No bookmark set for this book.")
					return nil
				}
				if jsonOut {
					return writeJSON(cmd, bookmark)
				}
				cmd.Printf("Reading %q at offset %d (saved %s)\n",
					bookmark.ModuleTitle, bookmark.Offset, bookmark.UpdatedAt.Local().Format("2006-01-02 15:04"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newBookmarkClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <book-id>",
		Short: "Remove the saved reading position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				if err := svc.ClearBookmark(ctx, args[0]); err != nil {
					return err
				}
				cmd.Println("Bookmark cleared.")
				return nil
			})
		},
	}
}
