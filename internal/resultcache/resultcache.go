// Package resultcache stores fully resolved template records keyed by
// normalized query, independent of the catalog cache. Narrative content and
// the template image live in separate namespaces with different lifetimes.
package resultcache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hkonishi/memedex/internal/kvstore"
)

// ExampleImage is one scraped example, in page order.
type ExampleImage struct {
	AltText string `json:"alt_text"`
	URL     string `json:"url"`
}

// ResolvedRecord is the enriched outcome of a successful resolution. It is
// created by the upstream handler after scraping and generation, and is
// immutable while cached.
type ResolvedRecord struct {
	CanonicalName    string         `json:"canonical_name"`
	SourcePageURL    string         `json:"source_page_url"`
	TemplateImageURL string         `json:"template_image_url"`
	Narrative        string         `json:"narrative,omitempty"`
	Summary          string         `json:"summary,omitempty"`
	ExampleImages    []ExampleImage `json:"example_images"`
	CachedAt         time.Time      `json:"cached_at"`
}

const (
	// DefaultRecordTTL bounds narrative records. Generated text is the
	// expensive part of a record and goes stale only when the source page
	// changes, so the long end of the plausible range.
	DefaultRecordTTL = 12 * time.Hour

	// DefaultImageTTL bounds the template-image namespace. Template images
	// change far less often than narrative text; callers that only need
	// the image should read this namespace and skip regeneration.
	DefaultImageTTL = 7 * 24 * time.Hour
)

// Cache is the resolved-record cache. Store outages degrade to "no caching":
// writes are dropped with a warning and reads report a miss, so a transient
// backend failure never reaches the caller as an error.
type Cache struct {
	store     kvstore.Store
	recordTTL time.Duration
	imageTTL  time.Duration
	logger    *slog.Logger
}

// New creates a result cache. Non-positive TTLs select the defaults; a nil
// logger selects slog.Default().
func New(store kvstore.Store, recordTTL, imageTTL time.Duration, logger *slog.Logger) *Cache {
	if recordTTL <= 0 {
		recordTTL = DefaultRecordTTL
	}
	if imageTTL <= 0 {
		imageTTL = DefaultImageTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:     store,
		recordTTL: recordTTL,
		imageTTL:  imageTTL,
		logger:    logger,
	}
}

// CacheResult stores a resolved record under the normalized query, and the
// record's template image under the longer-lived image namespace.
func (c *Cache) CacheResult(ctx context.Context, query string, record ResolvedRecord) {
	encoded, err := json.Marshal(record)
	if err != nil {
		c.logger.Warn("failed to encode resolved record", "query", query, "error", err)
		return
	}
	if err := c.store.Set(ctx, kvstore.ResultKey(query), encoded, c.recordTTL); err != nil {
		c.logger.Warn("failed to cache resolved record", "query", query, "error", err)
	}
	if record.TemplateImageURL != "" {
		c.CacheTemplateImage(ctx, query, record.TemplateImageURL)
	}
}

// GetResult returns the cached record for the query, or nil on a miss. Store
// errors are logged and reported as a miss.
func (c *Cache) GetResult(ctx context.Context, query string) *ResolvedRecord {
	value, found, err := c.store.Get(ctx, kvstore.ResultKey(query))
	if err != nil {
		c.logger.Warn("failed to read resolved record", "query", query, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	var record ResolvedRecord
	if err := json.Unmarshal(value, &record); err != nil {
		c.logger.Warn("cached resolved record is corrupt, discarding", "query", query, "error", err)
		return nil
	}
	return &record
}

// CacheTemplateImage stores only the template image URL for the query.
func (c *Cache) CacheTemplateImage(ctx context.Context, query, imageURL string) {
	if err := c.store.Set(ctx, kvstore.TemplateImageKey(query), []byte(imageURL), c.imageTTL); err != nil {
		c.logger.Warn("failed to cache template image", "query", query, "error", err)
	}
}

// GetTemplateImage returns the cached template image URL for the query.
func (c *Cache) GetTemplateImage(ctx context.Context, query string) (string, bool) {
	value, found, err := c.store.Get(ctx, kvstore.TemplateImageKey(query))
	if err != nil {
		c.logger.Warn("failed to read template image", "query", query, "error", err)
		return "", false
	}
	if !found {
		return "", false
	}
	return string(value), true
}
