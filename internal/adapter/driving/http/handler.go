// Package httphandler is the HTTP driving adapter that serves the JSON API.
package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/streamfinder/internal/application"
	"github.com/ericfisherdev/streamfinder/internal/domain/port/driven"
)

// MetadataClient is the slice of the TMDB client the API handlers need.
// Payloads are proxied to the SPA verbatim.
type MetadataClient interface {
	Search(ctx context.Context, contentType, query string) (json.RawMessage, error)
	ExternalIDs(ctx context.Context, contentType, id string) (json.RawMessage, error)
	Season(ctx context.Context, id, season string) (json.RawMessage, error)
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	sessionSvc   *application.SessionService
	streamSvc    *application.StreamService
	stremio      driven.StremioClient
	metadata     MetadataClient // nil when no TMDB key is configured
	cookieMaxAge time.Duration
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
// metadata may be nil; the metadata proxy endpoints then respond with 503.
func NewHandler(
	sessionSvc *application.SessionService,
	streamSvc *application.StreamService,
	stremio driven.StremioClient,
	metadata MetadataClient,
	cookieMaxAge time.Duration,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sessionSvc:   sessionSvc,
		streamSvc:    streamSvc,
		stremio:      stremio,
		metadata:     metadata,
		cookieMaxAge: cookieMaxAge,
		logger:       logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("GET /api/stremio-token", h.Token)
	mux.HandleFunc("GET /api/webstreamr/{type}/{id}", h.FindStream)
	mux.HandleFunc("GET /api/webstreamr/{type}/{id}/{season}/{episode}", h.FindStream)
	mux.HandleFunc("GET /api/session/addons", h.ListAddons)
	mux.HandleFunc("GET /api/session/library", h.ListLibrary)
	mux.HandleFunc("GET /api/search/{type}", h.SearchMetadata)
	mux.HandleFunc("GET /api/external-ids/{type}/{id}", h.ExternalIDs)
	mux.HandleFunc("GET /api/tv/{id}/season/{season}", h.Season)
}

// Health is the liveness probe for container healthchecks.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login authenticates against the Stremio API, persists the session record,
// and seeds the client's cookie channel with the credential subset.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	result, err := h.sessionSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed", "email", req.Email, "error", err)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if result.PersistErr != nil {
		// The cookie channel still carries the session; the durable copy
		// will be recreated on the next successful login.
		h.logger.Error("failed to persist session record", "email", req.Email, "error", result.PersistErr)
	}

	setSessionCookies(w, result.Record, h.cookieMaxAge)
	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		AuthKey: result.Record.AuthKey,
		Email:   result.Record.Email,
	})
}

// Token reports the resolved session identity for the calling client.
// An unauthenticated caller gets {hasToken:false} with 200, never an error.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	identity := h.sessionSvc.Resolve(r.Context(), ReadCookieCredentials(r))
	writeJSON(w, http.StatusOK, toTokenResponse(identity))
}

// FindStream resolves a title to one playable stream URL.
func (h *Handler) FindStream(w http.ResponseWriter, r *http.Request) {
	contentType := r.PathValue("type")
	id := r.PathValue("id")

	season, ok := optionalInt(r.PathValue("season"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid season")
		return
	}
	episode, ok := optionalInt(r.PathValue("episode"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid episode")
		return
	}

	res, err := h.streamSvc.Resolve(r.Context(), contentType, id, season, episode)
	if err != nil {
		h.logger.Error("stream resolution failed", "type", contentType, "id", id, "error", err)
		writeError(w, http.StatusBadGateway, "could not fetch streams")
		return
	}

	if !res.Found {
		writeJSON(w, http.StatusOK, StreamResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, StreamResponse{
		Found:       true,
		URL:         res.Stream.URL,
		Name:        res.Stream.Name,
		Description: res.Stream.Description,
	})
}

// ListAddons returns the installed addon collection of the resolved session.
// An unauthenticated caller gets an empty list with 200.
func (h *Handler) ListAddons(w http.ResponseWriter, r *http.Request) {
	identity := h.sessionSvc.Resolve(r.Context(), ReadCookieCredentials(r))
	if !identity.IsAuthenticated() {
		writeJSON(w, http.StatusOK, []AddonResponse{})
		return
	}

	addons, err := h.stremio.ListAddons(r.Context(), identity.AuthKey)
	if err != nil {
		h.logger.Error("failed to list addons", "error", err)
		writeError(w, http.StatusBadGateway, "could not fetch addons")
		return
	}

	resp := make([]AddonResponse, 0, len(addons))
	for _, a := range addons {
		resp = append(resp, toAddonResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListLibrary returns the library items of the resolved session.
// An unauthenticated caller gets an empty list with 200.
func (h *Handler) ListLibrary(w http.ResponseWriter, r *http.Request) {
	identity := h.sessionSvc.Resolve(r.Context(), ReadCookieCredentials(r))
	if !identity.IsAuthenticated() {
		writeJSON(w, http.StatusOK, []LibraryItemResponse{})
		return
	}

	items, err := h.stremio.ListLibrary(r.Context(), identity.AuthKey, "libraryItem")
	if err != nil {
		h.logger.Error("failed to list library", "error", err)
		writeError(w, http.StatusBadGateway, "could not fetch library")
		return
	}

	resp := make([]LibraryItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, toLibraryItemResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchMetadata proxies a TMDB title search.
func (h *Handler) SearchMetadata(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata search not configured")
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter required")
		return
	}

	raw, err := h.metadata.Search(r.Context(), r.PathValue("type"), query)
	if err != nil {
		h.logger.Error("metadata search failed", "error", err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

// ExternalIDs proxies a TMDB external-ids lookup.
func (h *Handler) ExternalIDs(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata search not configured")
		return
	}

	raw, err := h.metadata.ExternalIDs(r.Context(), r.PathValue("type"), r.PathValue("id"))
	if err != nil {
		h.logger.Error("external ids lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch external ids")
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

// Season proxies a TMDB season lookup.
func (h *Handler) Season(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeError(w, http.StatusServiceUnavailable, "metadata search not configured")
		return
	}

	raw, err := h.metadata.Season(r.Context(), r.PathValue("id"), r.PathValue("season"))
	if err != nil {
		h.logger.Error("season lookup failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch season data")
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

// optionalInt parses a path segment that may be absent. Absent yields (0, true).
func optionalInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
