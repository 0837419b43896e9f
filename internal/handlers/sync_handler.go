package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

// SyncHandler handles manual synchronization passes and run history
type SyncHandler struct {
	syncService interfaces.SyncService
	runStorage  interfaces.RunStorage
	events      SyncEvents
	logger      arbor.ILogger
}

// NewSyncHandler creates a new sync handler. runStorage and events may be nil.
func NewSyncHandler(syncService interfaces.SyncService, runStorage interfaces.RunStorage, events SyncEvents, logger arbor.ILogger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		runStorage:  runStorage,
		events:      events,
		logger:      logger,
	}
}

// RunSyncHandler handles POST /api/sync
func (h *SyncHandler) RunSyncHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.syncService.IsRunning() {
		WriteError(w, http.StatusConflict, "synchronization pass already in progress")
		return
	}

	var onService interfaces.ServiceReconciledFunc
	if h.events != nil {
		onService = h.events.BroadcastServiceReconciled
	}

	// A disconnecting client does not interrupt the pass
	ctx := context.WithoutCancel(r.Context())
	result, err := h.syncService.RunFullSynchronizationPass(ctx, models.TriggerManual, onService)
	if h.events != nil {
		h.events.BroadcastSyncCompleted(result, err)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Manual synchronization failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// ListRunsHandler handles GET /api/sync/runs?limit=N
func (h *SyncHandler) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	runs := []models.SyncRun{}
	if h.runStorage != nil {
		stored, err := h.runStorage.ListRuns(r.Context(), limitParam(r, 20))
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to list sync runs")
			WriteError(w, http.StatusInternalServerError, "Failed to list sync runs")
			return
		}
		if stored != nil {
			runs = stored
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
