package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hkonishi/memedex/internal/catalog"
	"github.com/hkonishi/memedex/internal/catalog/imgflip"
)

func newCatalogCommand() *cobra.Command {
	catalogCommand := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and refresh the cached template catalog",
	}

	catalogCommand.AddCommand(newCatalogRefreshCommand())
	catalogCommand.AddCommand(newCatalogShowCommand())

	return catalogCommand
}

func newCatalogRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the catalog from the source regardless of freshness",
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

			cat := cache.Refresh(ctx)
			if cat.Stale {
				color.Yellow("Refresh failed, kept the copy fetched at %s (%d templates)",
					cat.FetchedAt.Format("2006-01-02 15:04"), len(cat.Entries))
				return nil
			}
			if cat.Empty() {
				return fmt.Errorf("refresh failed and no catalog has ever been stored")
			}

			color.Green("Fetched %d templates", len(cat.Entries))
			return nil
		},
	}
}

func newCatalogShowCommand() *cobra.Command {
	var limit int

	command := &cobra.Command{
		Use:   "show",
		Short: "Print the cached catalog",
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

			cat := cache.GetCatalog(ctx)
			if cat.Empty() {
				color.Red("The catalog is empty")
				return nil
			}

			fmt.Printf("%d templates, fetched at %s\n",
				len(cat.Entries), cat.FetchedAt.Format("2006-01-02 15:04"))
			for i, entry := range cat.Entries {
				if limit > 0 && i >= limit {
					fmt.Printf("... and %d more\n", len(cat.Entries)-limit)
					break
				}
				fmt.Printf("  %-12s %s\n", entry.ID, entry.Name)
			}
			return nil
		},
	}
	command.Flags().IntVar(&limit, "limit", 20, "maximum entries to print, 0 for all")

	return command
}
