// Package catalog fetches and caches the externally sourced list of meme
// template records. The catalog is replaced wholesale on refresh; individual
// entries are never mutated.
package catalog

import "time"

// Entry is a single template record from the catalog source.
type Entry struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TemplateImageURL string `json:"template_image_url"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	TextBoxCount     int    `json:"text_box_count"`
	UsageCount       int    `json:"usage_count"`
}

// Catalog is an ordered sequence of entries plus the time they were fetched.
// A catalog is either fresh within the cache TTL or explicitly marked stale;
// stale catalogs are still usable for resolution.
type Catalog struct {
	Entries   []Entry   `json:"entries"`
	FetchedAt time.Time `json:"fetched_at"`
	Stale     bool      `json:"stale,omitempty"`
}

// Empty reports whether the catalog holds no entries.
func (c Catalog) Empty() bool {
	return len(c.Entries) == 0
}

// FreshAt reports whether the catalog is within its freshness window at now.
func (c Catalog) FreshAt(now time.Time, ttl time.Duration) bool {
	if c.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(c.FetchedAt) <= ttl
}
