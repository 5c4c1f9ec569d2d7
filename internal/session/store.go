// Package session keeps per-user ephemeral state: which record a session is
// looking at and how far it has paged. Entries use sliding expiration, so an
// active session stays alive while an abandoned one falls out on its own.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hkonishi/memedex/internal/kvstore"
)

// Context is the state of one user session. It references the last resolved
// record by value so a catalog refresh cannot invalidate an open session.
type Context struct {
	SessionID        string    `json:"session_id"`
	RecordID         string    `json:"record_id"`
	RecordName       string    `json:"record_name"`
	SourcePageURL    string    `json:"source_page_url"`
	TemplateImageURL string    `json:"template_image_url"`
	PageCursor       int       `json:"page_cursor"`
	LastTouchedAt    time.Time `json:"last_touched_at"`
}

// DefaultTTL is the sliding session window. A paging session is interactive;
// an hour of inactivity means the user moved on. Reads refresh the window, so
// active sessions live indefinitely.
const DefaultTTL = time.Hour

// Store reads and writes session contexts in the shared key-value store.
// Store outages degrade to statelessness: writes are dropped with a warning
// and reads report no session.
type Store struct {
	store  kvstore.Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a session store. ttl <= 0 selects DefaultTTL; a nil
// logger selects slog.Default().
func NewStore(store kvstore.Store, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		store:  store,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// SetContext writes the session state and starts a fresh TTL window. The
// page cursor is clamped to 1 and LastTouchedAt is stamped here so callers
// cannot write an inconsistent context.
func (s *Store) SetContext(ctx context.Context, sessionContext Context) {
	if sessionContext.PageCursor < 1 {
		sessionContext.PageCursor = 1
	}
	sessionContext.LastTouchedAt = s.now()

	encoded, err := json.Marshal(sessionContext)
	if err != nil {
		s.logger.Warn("failed to encode session context",
			"sessionID", sessionContext.SessionID, "error", err)
		return
	}
	if err := s.store.Set(ctx, kvstore.SessionKey(sessionContext.SessionID), encoded, s.ttl); err != nil {
		s.logger.Warn("failed to store session context",
			"sessionID", sessionContext.SessionID, "error", err)
	}
}

// GetContext returns the session state, or nil when no session exists. A hit
// re-writes the same value so the read extends the session's TTL.
func (s *Store) GetContext(ctx context.Context, sessionID string) *Context {
	key := kvstore.SessionKey(sessionID)
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read session context", "sessionID", sessionID, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	var sessionContext Context
	if err := json.Unmarshal(value, &sessionContext); err != nil {
		s.logger.Warn("stored session context is corrupt, discarding",
			"sessionID", sessionID, "error", err)
		return nil
	}

	// Sliding expiration: a read extends the session.
	if err := s.store.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("failed to refresh session TTL", "sessionID", sessionID, "error", err)
	}
	return &sessionContext
}

// DeleteContext removes the session immediately, used when the user starts a
// new search.
func (s *Store) DeleteContext(ctx context.Context, sessionID string) {
	if _, err := s.store.Delete(ctx, kvstore.SessionKey(sessionID)); err != nil {
		s.logger.Warn("failed to delete session context", "sessionID", sessionID, "error", err)
	}
}
