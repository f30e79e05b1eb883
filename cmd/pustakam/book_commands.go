package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pustakam/internal/api"
)

func newBookCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the book library",
	}
	cmd.AddCommand(newBookCreateCommand(ctx))
	cmd.AddCommand(newBookListCommand(ctx))
	cmd.AddCommand(newBookShowCommand(ctx))
	cmd.AddCommand(newBookDeleteCommand(ctx))
	return cmd
}

func newBookCreateCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	var audience string
	cmd := &cobra.Command{
		Use:   "create <goal>",
		Short: "Plan a book roadmap from a learning goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.Join(args, " ")
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				created, err := svc.CreateBook(ctx, goal, audience)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, created)
				}
				cmd.Printf("Created book %s: %s (%d modules)\n", created.ID, created.Title, created.Total)
				cmd.Printf("Run 'pustakam generate start %s' to begin generation.\n", created.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().StringVar(&audience, "audience", "", "Who the book is written for, e.g. \"complete beginners\"")
	return cmd
}

func newBookListCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				books, err := svc.ListBooks(ctx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, books)
				}
				if len(books) == 0 {
					cmd.Println("No books yet. Create one with 'pustakam book create <goal>'.")
					return nil
				}
				rows := make([][]string, 0, len(books))
				for _, b := range books {
					rows = append(rows, []string{
						b.ID,
						b.Title,
						b.Status,
						fmt.Sprintf("%d/%d", b.Completed, b.Total),
						b.UpdatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				cmd.Println(renderTable(
					[]string{"ID", "Title", "Status", "Modules", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newBookShowCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	var withContent bool
	cmd := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show a book's roadmap and module states",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				b, err := svc.GetBook(ctx, args[0], withContent || jsonOut)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, b)
				}
				printBook(cmd, b, withContent)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().BoolVar(&withContent, "content", false, "Print generated module content")
	return cmd
}

func printBook(cmd *cobra.Command, b api.Book, withContent bool) {
	colorize := shouldColorize(cmd.OutOrStdout())
	for _, line := range renderSectionHeader(b.Title, colorize) {
		cmd.Println(line)
	}
	if b.Description != "" {
		cmd.Println(b.Description)
	}
	cmd.Printf("Goal:   %s\n", b.Goal)
	cmd.Printf("Status: %s (%d/%d modules completed)\n\n", b.Status, b.Completed, b.Total)

	for _, m := range b.Modules {
		message := ""
		if m.ErrorMessage != "" {
			message = m.ErrorMessage
		} else if m.WordCount > 0 {
			message = fmt.Sprintf("%d words", m.WordCount)
		}
		label := fmt.Sprintf("%d. %s", m.OrderIndex+1, m.Title)
		cmd.Println(renderStatusLine(label, moduleStatusKind(m.Status), message, colorize))
		if withContent && m.Content != "" {
			cmd.Println()
			cmd.Println(m.Content)
			cmd.Println()
		}
	}
}

func newBookDeleteCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Delete a book and all its modules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				if err := svc.DeleteBook(ctx, args[0]); err != nil {
					return err
				}
				cmd.Printf("Deleted book %s\n", args[0])
				return nil
			})
		},
	}
	return cmd
}
