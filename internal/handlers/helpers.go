package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/trello"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps a service error to a status code.
// Missing board configuration is a failed precondition; Trello rejections are upstream failures.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var apiErr *trello.APIError
	switch {
	case errors.Is(err, interfaces.ErrBoardNotConfigured):
		return WriteError(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, interfaces.ErrStageNotAdvanceable):
		return WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		return WriteError(w, http.StatusBadGateway, err.Error())
	default:
		return WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// stageParam reads the required "stage" query parameter.
// Writes a 400 and returns false when it is missing or unknown.
func stageParam(w http.ResponseWriter, r *http.Request) (models.Stage, bool) {
	raw := r.URL.Query().Get("stage")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "stage query parameter is required")
		return "", false
	}
	stage, err := models.ParseStage(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return stage, true
}

// limitParam reads the "limit" query parameter (default def, max 100)
func limitParam(r *http.Request, def int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return limit
}
