package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pustakam/internal/api"
	"pustakam/internal/provider"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the provider and model selection",
	}
	cmd.AddCommand(newSettingsShowCommand(ctx))
	cmd.AddCommand(newSettingsSetCommand(ctx))
	cmd.AddCommand(newSettingsSetKeyCommand(ctx))
	cmd.AddCommand(newSettingsModelsCommand())
	return cmd
}

func newSettingsShowCommand(cmdCtx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active provider, model, and which API keys are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				settings, err := svc.GetSettings(ctx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, settings)
				}
				cmd.Printf("Provider: %s\n", settings.Provider)
				cmd.Printf("Model:    %s\n", settings.Model)
				if len(settings.KeysSet) == 0 {
					cmd.Println("API keys: none set")
				} else {
					cmd.Printf("API keys: %s\n", strings.Join(settings.KeysSet, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newSettingsSetCommand(cmdCtx *commandContext) *cobra.Command {
	var providerName string
	var model string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Select the provider and model used for new sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if providerName == "" && model == "" {
				return cmd.Help()
			}
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				settings, err := svc.UpdateSettings(ctx, providerName, model)
				if err != nil {
					return err
				}
				cmd.Printf("Now using %s / %s\n", settings.Provider, settings.Model)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "Provider: google, mistral, groq, or cerebras")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model identifier for the selected provider")
	return cmd
}

func newSettingsSetKeyCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <provider> <api-key>",
		Short: "Store the API key for one provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withService(cmd.Context(), func(ctx context.Context, svc *api.Service) error {
				if err := svc.SetAPIKey(ctx, args[0], args[1]); err != nil {
					return err
				}
				cmd.Printf("API key saved for %s\n", args[0])
				return nil
			})
		},
	}
}

func errUnknownProvider(value string) error {
	names := provider.Names()
	known := make([]string, 0, len(names))
	for _, name := range names {
		known = append(known, string(name))
	}
	return fmt.Errorf("unknown provider %q (known: %s)", value, strings.Join(known, ", "))
}

func newSettingsModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List known models per provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := provider.Names()
			if len(args) == 1 {
				name, ok := provider.ParseName(args[0])
				if !ok {
					return errUnknownProvider(args[0])
				}
				names = []provider.Name{name}
			}
			rows := make([][]string, 0)
			for _, name := range names {
				for i, model := range provider.Models(name) {
					suffix := ""
					if i == 0 {
						suffix = "(default)"
					}
					rows = append(rows, []string{string(name), model, suffix})
				}
			}
			cmd.Println(renderTable(
				[]string{"Provider", "Model", ""},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
