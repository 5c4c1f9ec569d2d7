package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/hkonishi/memedex/internal/bootstrap"
	"github.com/hkonishi/memedex/internal/catalog"
	"github.com/hkonishi/memedex/internal/catalog/imgflip"
	"github.com/hkonishi/memedex/internal/config"
	"github.com/hkonishi/memedex/internal/database"
	"github.com/hkonishi/memedex/internal/inference"
	"github.com/hkonishi/memedex/internal/inference/gemini"
	"github.com/hkonishi/memedex/internal/inference/openai"
	"github.com/hkonishi/memedex/internal/kvstore"
	"github.com/hkonishi/memedex/internal/resultcache"
	"github.com/hkonishi/memedex/internal/server"
	"github.com/hkonishi/memedex/internal/session"
	"github.com/hkonishi/memedex/internal/suggest"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "memedex-server",
		Short:         "Meme template resolution HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("openStore() > %w", err)
	}
	app.AddShutdownHook(func(ctx context.Context) error {
		return closeStore()
	})

	inferenceClient, err := newInferenceClient(cfg)
	if err != nil {
		return fmt.Errorf("newInferenceClient() > %w", err)
	}

	catalogSource := imgflip.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.RetryAttempts)
	handler := server.NewHandler(
		catalog.NewCache(store, catalogSource, cfg.Cache.CatalogTTL, logger),
		resultcache.New(store, cfg.Cache.RecordTTL, cfg.Cache.ImageTTL, logger),
		session.NewStore(store, cfg.Cache.SessionTTL, logger),
		suggest.NewCache(store, inferenceClient, cfg.Cache.SuggestionsTTL, logger),
		logger,
	)

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsMiddleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", "addr", srv.Addr, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func openStore(ctx context.Context, cfg *config.Config) (kvstore.Store, func() error, error) {
	switch cfg.Store.Backend {
	case "badger":
		store, err := kvstore.OpenBadger(cfg.Store.BadgerDirectory)
		if err != nil {
			return nil, nil, fmt.Errorf("kvstore.OpenBadger() > %w", err)
		}
		return store, store.Close, nil
	case "mysql":
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		store := kvstore.NewSQLStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("store.EnsureSchema() > %w", err)
		}
		return store, db.Close, nil
	case "memory":
		return kvstore.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newInferenceClient(cfg *config.Config) (inference.Client, error) {
	switch cfg.Inference.Provider {
	case "openai":
		if cfg.Inference.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return openai.NewClient(cfg.Inference.OpenAI.APIKey, cfg.Inference.OpenAI.Model, cfg.Inference.RetryAttempts), nil
	case "gemini":
		if cfg.Inference.Gemini.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
		return gemini.NewClient(cfg.Inference.Gemini.APIKey, cfg.Inference.Gemini.Model), nil
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Inference.Provider)
	}
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
