package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// MarketplaceHandler helps the operator sign in to the marketplace in the persisted browser profile
type MarketplaceHandler struct {
	session MarketplaceSession
	logger  arbor.ILogger
}

// NewMarketplaceHandler creates a new marketplace handler
func NewMarketplaceHandler(session MarketplaceSession, logger arbor.ILogger) *MarketplaceHandler {
	return &MarketplaceHandler{
		session: session,
		logger:  logger,
	}
}

// LoginHandler handles POST /api/marketplace/login
func (h *MarketplaceHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	loginURL, err := h.session.OpenMarketplaceLogin(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to open marketplace login")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"login_url": loginURL,
		"message":   "Login page opened in the browser session. Sign in there, then check /api/marketplace/session.",
	})
}

// SessionHandler handles GET /api/marketplace/session
func (h *MarketplaceHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	loggedIn, err := h.session.MarketplaceSession(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to check marketplace session")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"logged_in": loggedIn})
}
