package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hkonishi/memedex/internal/catalog"
	"github.com/hkonishi/memedex/internal/catalog/imgflip"
	"github.com/hkonishi/memedex/internal/resolver"
)

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <query>...",
		Short: "Resolve a free-text query against the template catalog",
		Args:  cobra.MinimumNArgs(1),
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

			source := imgflip.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.RetryAttempts)
			cache := catalog.NewCache(store, source, cfg.Cache.CatalogTTL, nil)

			query := strings.Join(args, " ")
			cat := cache.GetCatalog(ctx)
			if cat.Empty() {
				return fmt.Errorf("catalog is empty and the source is unreachable")
			}
			if cat.Stale {
				color.Yellow("Catalog source is unreachable, matching against the copy fetched at %s",
					cat.FetchedAt.Format("2006-01-02 15:04"))
			}

			match, ok := resolver.Resolve(query, cat)
			if !ok {
				color.Red("No template matches %q", query)
				return nil
			}

			color.Green("%s (score %.1f)", match.Entry.Name, match.Score)
			fmt.Printf("  id:    %s\n", match.Entry.ID)
			fmt.Printf("  image: %s\n", match.Entry.TemplateImageURL)
			fmt.Printf("  size:  %dx%d, %d text boxes\n",
				match.Entry.Width, match.Entry.Height, match.Entry.TextBoxCount)
			return nil
		},
	}
}
