// Package suggest maintains a small rotating list of suggested queries,
// generated by the text-generation collaborator with a static fallback.
package suggest

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/singleflight"

	"github.com/hkonishi/memedex/internal/inference"
	"github.com/hkonishi/memedex/internal/kvstore"
)

const (
	// DefaultTTL rotates the suggestion list often enough to stay fresh
	// without hammering the rate-limited generation provider.
	DefaultTTL = 90 * time.Minute

	// suggestionCount is how many suggestions the provider is asked for
	// and how many the fallback serves.
	suggestionCount = 5

	// minUsableLines is the acceptance threshold for a generated response.
	// Fewer usable lines than this means the response was malformed.
	minUsableLines = 3
)

const prompt = `List 5 well-known meme templates that someone might search for by name.
Reply with exactly one template name per line.
Do not number the lines and do not add any other text.`

// Cache serves the current suggestion list. Generation failures fall back to
// a randomized slice of a static list, which is deliberately not cached so
// the next call retries generation.
type Cache struct {
	store  kvstore.Store
	client inference.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewCache creates a suggestion cache. ttl <= 0 selects DefaultTTL; a nil
// logger selects slog.Default().
func NewCache(store kvstore.Store, client inference.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetSuggestions returns between 3 and 5 non-empty suggestion strings. It
// never fails: a cache hit is served as-is, a miss triggers one generation
// call shared across concurrent callers, and any generation problem falls
// back to the static list.
func (c *Cache) GetSuggestions(ctx context.Context) []string {
	if cached, ok := c.load(ctx); ok {
		return cached
	}

	result, _, _ := c.group.Do(kvstore.SuggestionsKey, func() (any, error) {
		return c.regenerate(ctx), nil
	})
	return result.([]string)
}

func (c *Cache) regenerate(ctx context.Context) []string {
	response, err := c.client.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("suggestion generation failed, serving static fallback", "error", err)
		return sampleFallback(suggestionCount)
	}

	suggestions := parseSuggestions(response)
	if len(suggestions) < minUsableLines {
		c.logger.Warn("suggestion generation returned a malformed response, serving static fallback",
			"usableLines", len(suggestions))
		return sampleFallback(suggestionCount)
	}

	encoded, err := json.Marshal(suggestions)
	if err != nil {
		c.logger.Warn("failed to encode suggestions", "error", err)
		return suggestions
	}
	if err := c.store.Set(ctx, kvstore.SuggestionsKey, encoded, c.ttl); err != nil {
		c.logger.Warn("failed to cache suggestions", "error", err)
	}
	return suggestions
}

func (c *Cache) load(ctx context.Context) ([]string, bool) {
	value, found, err := c.store.Get(ctx, kvstore.SuggestionsKey)
	if err != nil {
		c.logger.Warn("failed to read cached suggestions", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var suggestions []string
	if err := json.Unmarshal(value, &suggestions); err != nil {
		c.logger.Warn("cached suggestions are corrupt, discarding", "error", err)
		return nil, false
	}
	if len(suggestions) < minUsableLines {
		return nil, false
	}
	return suggestions, true
}

// parseSuggestions extracts usable suggestion lines from a raw completion.
// Providers ignore formatting instructions often enough that numbering,
// bullets and quotes have to be stripped.
func parseSuggestions(response string) []string {
	var suggestions []string
	for _, line := range strings.Split(response, "\n") {
		line = cleanSuggestionLine(line)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == suggestionCount {
			break
		}
	}
	return suggestions
}

func cleanSuggestionLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*• \t")
	// Strip "1." / "2)" style numbering.
	trimmed := strings.TrimLeftFunc(line, unicode.IsDigit)
	if trimmed != line {
		trimmed = strings.TrimLeft(trimmed, ".) ")
		line = trimmed
	}
	line = strings.Trim(line, `"'`)
	return strings.TrimSpace(line)
}
