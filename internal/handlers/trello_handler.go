package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// TrelloHandler exposes the board maintenance operations
type TrelloHandler struct {
	board  BoardMaintainer
	logger arbor.ILogger
}

// NewTrelloHandler creates a new Trello handler
func NewTrelloHandler(board BoardMaintainer, logger arbor.ILogger) *TrelloHandler {
	return &TrelloHandler{
		board:  board,
		logger: logger,
	}
}

// TestConnectionHandler handles POST /api/trello/test
func (h *TrelloHandler) TestConnectionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	board, err := h.board.TestConnection(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Trello connection test failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"board":  board,
	})
}

// EnsureLabelsHandler handles POST /api/trello/labels
func (h *TrelloHandler) EnsureLabelsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	result, err := h.board.EnsureStatusLabels(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to set up status labels")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// RefreshTitlesHandler handles POST /api/trello/refresh-titles
func (h *TrelloHandler) RefreshTitlesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	result, err := h.board.RefreshCardTitles(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to refresh card titles")
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
