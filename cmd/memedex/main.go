package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile    string
	storeOverride storeBackend
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "memedex",
		Short:         "Resolve meme template names against the catalog and inspect the caches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().Var(&storeOverride, "store", "override the configured store backend (memory, badger, mysql)")

	rootCmd.AddCommand(newResolveCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newSuggestCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
