package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		env               map[string]string
		wantErr           bool
		wantErrorContains []string
		assertConfig      func(t *testing.T, got *Config)
	}{
		{
			name:          "empty config uses defaults",
			configContent: "",
			assertConfig: func(t *testing.T, got *Config) {
				assert.Equal(t, 8080, got.Server.Port)
				assert.Equal(t, []string{"http://localhost:3000"}, got.Server.CORS.AllowedOrigins)
				assert.Equal(t, "badger", got.Store.Backend)
				assert.Equal(t, filepath.Join("data", "memedex"), got.Store.BadgerDirectory)
				assert.Equal(t, "https://api.imgflip.com", got.Catalog.BaseURL)
				assert.Equal(t, uint(3), got.Catalog.RetryAttempts)
				assert.Equal(t, "openai", got.Inference.Provider)
				assert.Equal(t, "gpt-4o-mini", got.Inference.OpenAI.Model)
				assert.Equal(t, "gemini-1.5-flash", got.Inference.Gemini.Model)
				assert.Zero(t, got.Cache.CatalogTTL)
			},
		},
		{
			name: "custom values override defaults",
			configContent: `server:
  port: 9090
  cors:
    allowed_origins:
      - https://memedex.example.com
store:
  backend: mysql
database:
  host: db.example.com
  port: 3307
  database: memedex_prod
  username: memedex
catalog:
  base_url: http://imgflip.internal:8081
  retry_attempts: 5
cache:
  catalog_ttl: 6h
  record_ttl: 30m
  session_ttl: 2h
inference:
  provider: gemini
`,
			assertConfig: func(t *testing.T, got *Config) {
				assert.Equal(t, 9090, got.Server.Port)
				assert.Equal(t, []string{"https://memedex.example.com"}, got.Server.CORS.AllowedOrigins)
				assert.Equal(t, "mysql", got.Store.Backend)
				assert.Equal(t, "db.example.com", got.Database.Host)
				assert.Equal(t, 3307, got.Database.Port)
				assert.Equal(t, "http://imgflip.internal:8081", got.Catalog.BaseURL)
				assert.Equal(t, uint(5), got.Catalog.RetryAttempts)
				assert.Equal(t, 6*time.Hour, got.Cache.CatalogTTL)
				assert.Equal(t, 30*time.Minute, got.Cache.RecordTTL)
				assert.Equal(t, 2*time.Hour, got.Cache.SessionTTL)
				assert.Equal(t, "gemini", got.Inference.Provider)
			},
		},
		{
			name:          "api keys come from the environment",
			configContent: "",
			env: map[string]string{
				"OPENAI_API_KEY": "sk-test",
				"GEMINI_API_KEY": "g-test",
				"DB_PASSWORD":    "secret",
			},
			assertConfig: func(t *testing.T, got *Config) {
				assert.Equal(t, "sk-test", got.Inference.OpenAI.APIKey)
				assert.Equal(t, "g-test", got.Inference.Gemini.APIKey)
				assert.Equal(t, "secret", got.Database.Password)
			},
		},
		{
			name: "invalid YAML format",
			configContent: `store:
  backend: badger
  invalid yaml here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown store backend is rejected",
			configContent: `store:
  backend: redis
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "backend"},
		},
		{
			name: "unknown inference provider is rejected",
			configContent: `inference:
  provider: azure
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "provider"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			var configPath string
			if tt.configContent != "" {
				configPath = filepath.Join(t.TempDir(), "config.yaml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else {
				// No explicit path: run from an empty directory so a config
				// file in the working directory cannot leak into the test.
				t.Chdir(t.TempDir())
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)

			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			tt.assertConfig(t, got)
		})
	}
}
