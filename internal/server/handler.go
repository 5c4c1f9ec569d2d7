// Package server exposes the resolution and cache operations as a small
// JSON-over-HTTP API for the chat-platform handler.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hkonishi/memedex/internal/catalog"
	"github.com/hkonishi/memedex/internal/resolver"
	"github.com/hkonishi/memedex/internal/resultcache"
	"github.com/hkonishi/memedex/internal/session"
	"github.com/hkonishi/memedex/internal/suggest"
)

// Handler serves the v1 API. Every dependency degrades internally, so the
// only client-visible errors are malformed requests and missing sessions.
type Handler struct {
	catalog     *catalog.Cache
	results     *resultcache.Cache
	sessions    *session.Store
	suggestions *suggest.Cache
	logger      *slog.Logger
}

// NewHandler creates a Handler. A nil logger selects slog.Default().
func NewHandler(
	catalogCache *catalog.Cache,
	results *resultcache.Cache,
	sessions *session.Store,
	suggestions *suggest.Cache,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog:     catalogCache,
		results:     results,
		sessions:    sessions,
		suggestions: suggestions,
		logger:      logger,
	}
}

// Register mounts the v1 routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/resolve", h.handleResolve)
	mux.HandleFunc("GET /v1/suggestions", h.handleSuggestions)
	mux.HandleFunc("GET /v1/results/{query}", h.handleGetResult)
	mux.HandleFunc("PUT /v1/results/{query}", h.handlePutResult)
	mux.HandleFunc("GET /v1/sessions/{id}", h.handleGetSession)
	mux.HandleFunc("PUT /v1/sessions/{id}", h.handlePutSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.handleDeleteSession)
}

type resolveRequest struct {
	Query string `json:"query"`
}

type matchPayload struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	TemplateImageURL string  `json:"template_image_url"`
	Score            float64 `json:"score"`
}

type resolveResponse struct {
	Matched      bool                        `json:"matched"`
	Cached       bool                        `json:"cached"`
	Match        *matchPayload               `json:"match,omitempty"`
	Record       *resultcache.ResolvedRecord `json:"record,omitempty"`
	CatalogStale bool                        `json:"catalog_stale,omitempty"`
	Suggestions  []string                    `json:"suggestions,omitempty"`
}

// handleResolve first consults the result cache, then runs the resolution
// engine over the current catalog. A no-match comes back with suggestions so
// the caller can offer alternatives in one round trip.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "request body must be a JSON object with a query field")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	ctx := r.Context()
	if record := h.results.GetResult(ctx, req.Query); record != nil {
		h.writeJSON(w, http.StatusOK, resolveResponse{
			Matched: true,
			Cached:  true,
			Record:  record,
		})
		return
	}

	cat := h.catalog.GetCatalog(ctx)
	match, ok := resolver.Resolve(req.Query, cat)
	if !ok {
		h.writeJSON(w, http.StatusOK, resolveResponse{
			Matched:      false,
			CatalogStale: cat.Stale,
			Suggestions:  h.suggestions.GetSuggestions(ctx),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, resolveResponse{
		Matched: true,
		Match: &matchPayload{
			ID:               match.Entry.ID,
			Name:             match.Entry.Name,
			TemplateImageURL: match.Entry.TemplateImageURL,
			Score:            match.Score,
		},
		CatalogStale: cat.Stale,
	})
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{
		"suggestions": h.suggestions.GetSuggestions(r.Context()),
	})
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	record := h.results.GetResult(r.Context(), query)
	if record == nil {
		h.writeError(w, http.StatusNotFound, "no cached record for this query")
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

// handlePutResult stores an enriched record produced by the caller after
// scraping and generation.
func (h *Handler) handlePutResult(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	var record resultcache.ResolvedRecord
	if err := decodeJSON(r.Body, &record); err != nil {
		h.writeError(w, http.StatusBadRequest, "request body must be a JSON record")
		return
	}
	if record.CanonicalName == "" {
		h.writeError(w, http.StatusBadRequest, "canonical_name must not be empty")
		return
	}

	h.results.CacheResult(r.Context(), query, record)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionContext := h.sessions.GetContext(r.Context(), r.PathValue("id"))
	if sessionContext == nil {
		h.writeError(w, http.StatusNotFound, "no active session")
		return
	}
	h.writeJSON(w, http.StatusOK, sessionContext)
}

func (h *Handler) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var sessionContext session.Context
	if err := decodeJSON(r.Body, &sessionContext); err != nil {
		h.writeError(w, http.StatusBadRequest, "request body must be a JSON session context")
		return
	}
	// The path is authoritative for the session ID.
	sessionContext.SessionID = r.PathValue("id")

	h.sessions.SetContext(r.Context(), sessionContext)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.DeleteContext(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(body io.Reader, v any) error {
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(v); err != nil {
		return err
	}
	// Trailing content means the body was not a single JSON value.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing content")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
