package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hkonishi/memedex/internal/kvstore"
)

// Source fetches the full template list from the upstream catalog provider.
type Source interface {
	FetchCatalog(ctx context.Context) ([]Entry, error)
}

// DefaultTTL is the catalog freshness window. The upstream list changes
// rarely; a day keeps resolution stable while still picking up new templates.
const DefaultTTL = 24 * time.Hour

// Cache serves the catalog from the shared store, refreshing it from the
// source when the freshness window has passed.
//
// The stored catalog carries no store-level TTL: freshness is judged against
// FetchedAt so that a failed refresh can still fall back to the stale copy.
// GetCatalog never returns an error; the worst outcome is an empty catalog.
type Cache struct {
	store  kvstore.Store
	source Source
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewCache creates a catalog cache. ttl <= 0 selects DefaultTTL; a nil
// logger selects slog.Default().
func NewCache(store kvstore.Store, source Source, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// GetCatalog returns the current catalog. Within the freshness window the
// stored copy is returned as-is. Past it, the source is fetched once even
// under concurrent callers (single-flight); on fetch failure the stale copy
// is served with Stale set, or an empty catalog when nothing was ever stored.
func (c *Cache) GetCatalog(ctx context.Context) Catalog {
	stored, ok := c.load(ctx)
	if ok && stored.FreshAt(c.now(), c.ttl) {
		return stored
	}

	return c.Refresh(ctx)
}

// Refresh fetches the source regardless of freshness, with the same
// single-flight and stale-fallback behavior as an expired GetCatalog.
func (c *Cache) Refresh(ctx context.Context) Catalog {
	result, _, _ := c.group.Do(kvstore.CatalogKey, func() (any, error) {
		return c.refresh(ctx), nil
	})
	return result.(Catalog)
}

// refresh fetches the source and stores the result, falling back to the
// stale stored copy (or an empty catalog) when the fetch fails.
func (c *Cache) refresh(ctx context.Context) Catalog {
	entries, err := c.source.FetchCatalog(ctx)
	if err != nil {
		stored, ok := c.load(ctx)
		if !ok {
			c.logger.Warn("catalog refresh failed with nothing stored, serving empty catalog",
				"error", err)
			return Catalog{}
		}
		c.logger.Warn("catalog refresh failed, serving stale catalog",
			"error", err,
			"fetchedAt", stored.FetchedAt,
			"entries", len(stored.Entries))
		stored.Stale = true
		return stored
	}

	fresh := Catalog{Entries: entries, FetchedAt: c.now()}
	encoded, err := json.Marshal(fresh)
	if err != nil {
		c.logger.Warn("failed to encode catalog for caching", "error", err)
		return fresh
	}
	// No store-level TTL: the stale copy must outlive the freshness window.
	if err := c.store.Set(ctx, kvstore.CatalogKey, encoded, 0); err != nil {
		c.logger.Warn("failed to store refreshed catalog", "error", err)
	}
	return fresh
}

func (c *Cache) load(ctx context.Context) (Catalog, bool) {
	value, found, err := c.store.Get(ctx, kvstore.CatalogKey)
	if err != nil {
		c.logger.Warn("failed to read stored catalog", "error", err)
		return Catalog{}, false
	}
	if !found {
		return Catalog{}, false
	}
	var stored Catalog
	if err := json.Unmarshal(value, &stored); err != nil {
		c.logger.Warn("stored catalog is corrupt, discarding", "error", err)
		return Catalog{}, false
	}
	return stored, true
}
