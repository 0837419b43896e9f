package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

// OrdersHandler exposes stage listings, manual transitions and the processed-order ledger
type OrdersHandler struct {
	syncService interfaces.SyncService
	logger      arbor.ILogger
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(syncService interfaces.SyncService, logger arbor.ILogger) *OrdersHandler {
	return &OrdersHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// ListOrdersHandler handles GET /api/orders?stage=<stage>
func (h *OrdersHandler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	stage, ok := stageParam(w, r)
	if !ok {
		return
	}

	orders, err := h.syncService.ListOrders(r.Context(), stage)
	if err != nil {
		h.logger.Error().Str("stage", string(stage)).Err(err).Msg("Failed to list orders")
		WriteServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stage":  stage,
		"count":  len(orders),
		"orders": orders,
	})
}

// AdvanceHandler handles POST /api/orders/advance?stage=<new_order|preparing>
func (h *OrdersHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	stage, ok := stageParam(w, r)
	if !ok {
		return
	}

	attempted, err := h.syncService.AdvanceStage(r.Context(), stage)
	if err != nil {
		h.logger.Error().Str("stage", string(stage)).Err(err).Msg("Failed to advance stage")
		WriteServiceError(w, err)
		return
	}
	if attempted == nil {
		attempted = []models.OrderRef{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stage":     stage,
		"count":     len(attempted),
		"attempted": attempted,
	})
}

// LedgerHandler handles GET /api/ledger
func (h *OrdersHandler) LedgerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	entries := h.syncService.LedgerEntries()
	if entries == nil {
		entries = []string{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"orders": entries,
		"count":  len(entries),
	})
}

// ClearLedgerHandler handles POST /api/ledger/clear
func (h *OrdersHandler) ClearLedgerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := h.syncService.ClearLedger(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to clear ledger")
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, "Processed-order ledger cleared")
}
