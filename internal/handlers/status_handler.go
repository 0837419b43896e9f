package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	Version          string                      `json:"version"`
	BrowserRunning   bool                        `json:"browser_running"`
	TrelloConfigured bool                        `json:"trello_configured"`
	SyncRunning      bool                        `json:"sync_running"`
	LedgerSize       int                         `json:"ledger_size"`
	Scheduler        *interfaces.SchedulerStatus `json:"scheduler,omitempty"`
	LastRun          *models.SyncRun             `json:"last_run,omitempty"`
}

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	syncService      interfaces.SyncService
	scheduler        interfaces.SchedulerService
	runStorage       interfaces.RunStorage
	browser          BrowserChecker
	trelloConfigured bool
	logger           arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler. scheduler, runStorage and browser may be nil.
func NewStatusHandler(
	syncService interfaces.SyncService,
	scheduler interfaces.SchedulerService,
	runStorage interfaces.RunStorage,
	browser BrowserChecker,
	trelloConfigured bool,
	logger arbor.ILogger,
) *StatusHandler {
	return &StatusHandler{
		syncService:      syncService,
		scheduler:        scheduler,
		runStorage:       runStorage,
		browser:          browser,
		trelloConfigured: trelloConfigured,
		logger:           logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := StatusResponse{
		Version:          common.GetVersion(),
		TrelloConfigured: h.trelloConfigured,
		SyncRunning:      h.syncService.IsRunning(),
		LedgerSize:       len(h.syncService.LedgerEntries()),
	}
	if h.browser != nil {
		status.BrowserRunning = h.browser.IsRunning()
	}
	if h.scheduler != nil {
		s := h.scheduler.Status()
		status.Scheduler = &s
	}
	if h.runStorage != nil {
		lastRun, err := h.runStorage.LastRun(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to load last sync run")
		}
		status.LastRun = lastRun
	}

	WriteJSON(w, http.StatusOK, status)
}
