package kvstore

import "strings"

// Key namespaces live in one place so they cannot drift apart across caches.
// The store is shared with other tenants; every key this project writes
// starts with one of these prefixes.
const (
	// CatalogKey holds the serialized template catalog. Versioned so a
	// format change cannot misparse an old payload.
	CatalogKey = "catalog:imgflip:v1"

	// ResultKeyPrefix namespaces fully resolved records keyed by
	// normalized query.
	ResultKeyPrefix = "result:record:"

	// TemplateImageKeyPrefix namespaces the template-image-only entries,
	// which carry a longer TTL than the narrative records.
	TemplateImageKeyPrefix = "result:image:"

	// SessionKeyPrefix namespaces per-user session state.
	SessionKeyPrefix = "session:"

	// SuggestionsKey holds the current suggestion list.
	SuggestionsKey = "suggest:queries:v1"
)

// Normalize canonicalizes a free-text value for use as a cache key segment.
// Two queries differing only in case or surrounding whitespace must land on
// the same entry.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ResultKey returns the cache key for a resolved record.
func ResultKey(query string) string {
	return ResultKeyPrefix + Normalize(query)
}

// TemplateImageKey returns the cache key for the template-image namespace.
func TemplateImageKey(query string) string {
	return TemplateImageKeyPrefix + Normalize(query)
}

// SessionKey returns the cache key for a session.
func SessionKey(sessionID string) string {
	return SessionKeyPrefix + Normalize(sessionID)
}
