package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hkonishi/memedex/internal/suggest"
)

func newSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Print the current suggested queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx := cmd.Context()
			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeStore()
			}()

			client, err := newInferenceClient(cfg)
			if err != nil {
				return err
			}

			cache := suggest.NewCache(store, client, cfg.Cache.SuggestionsTTL, nil)
			color.Green("Try one of these:")
			for _, suggestion := range cache.GetSuggestions(ctx) {
				fmt.Printf("  - %s\n", suggestion)
			}
			return nil
		},
	}
}
