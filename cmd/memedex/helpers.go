package main

import (
	"context"
	"fmt"

	"github.com/hkonishi/memedex/internal/config"
	"github.com/hkonishi/memedex/internal/database"
	"github.com/hkonishi/memedex/internal/inference"
	"github.com/hkonishi/memedex/internal/inference/gemini"
	"github.com/hkonishi/memedex/internal/inference/openai"
	"github.com/hkonishi/memedex/internal/kvstore"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openStore opens the configured key-value backend. The returned close
// function must be called before exit so Badger can flush its value log.
func openStore(ctx context.Context, cfg *config.Config) (kvstore.Store, func() error, error) {
	backend := cfg.Store.Backend
	if storeOverride != "" {
		backend = string(storeOverride)
	}
	switch backend {
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
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
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
