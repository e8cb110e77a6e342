package web

import (
	"fmt"
	"log/slog"
	"net/http"

	httphandler "github.com/ericfisherdev/streamfinder/internal/adapter/driving/http"
	"github.com/ericfisherdev/streamfinder/internal/application"
)

// Handler is the web driving adapter serving HTML pages.
type Handler struct {
	sessionSvc *application.SessionService
	webBaseURL string
	logger     *slog.Logger
}

// NewHandler creates a Handler. webBaseURL is the Stremio Web origin the
// redirect page hands off to.
func NewHandler(sessionSvc *application.SessionService, webBaseURL string, logger *slog.Logger) *Handler {
	return &Handler{
		sessionSvc: sessionSvc,
		webBaseURL: webBaseURL,
		logger:     logger,
	}
}

// StremioRedirect renders the auth-injecting handoff page for one title.
// The session is refreshed best-effort first; a failed refresh only logs and
// the stale token rides along.
func (h *Handler) StremioRedirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contentType := q.Get("type")
	id := q.Get("id")
	if id == "" {
		http.Error(w, "id parameter required", http.StatusBadRequest)
		return
	}

	fragment := buildDetailPath(contentType, id, q.Get("season"), q.Get("episode"))

	cookies := httphandler.ReadCookieCredentials(r)
	identity, outcome := h.sessionSvc.RefreshIdentity(r.Context(), cookies)
	switch outcome.Status {
	case application.Refreshed:
		h.logger.Info("session token refreshed", "email", identity.Email)
	case application.RefreshKeptStale:
		h.logger.Warn("token refresh failed, using cached token", "error", outcome.Cause)
	}

	identityArg := &identity
	if !identity.IsAuthenticated() {
		identityArg = nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RedirectPage(identityArg, fragment, h.webBaseURL).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render redirect page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Index serves the embedded single-page UI. It doubles as the SPA fallback
// for unknown paths.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, StaticFS, "static/index.html")
}

// buildDetailPath constructs the in-app detail path for the target web app.
func buildDetailPath(contentType, id, season, episode string) string {
	if contentType == "series" || contentType == "tv" {
		path := fmt.Sprintf("/detail/series/%s", id)
		if season != "" && episode != "" {
			path += fmt.Sprintf("/%s/%s", season, episode)
		}
		return path
	}
	return fmt.Sprintf("/detail/movie/%s", id)
}
