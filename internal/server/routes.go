// -----------------------------------------------------------------------
// Last Modified: Saturday, 17th October 2026 11:05:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Status
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler) // GET

	// API routes - Synchronization
	mux.HandleFunc("/api/sync", s.app.SyncHandler.RunSyncHandler)        // POST - full pass
	mux.HandleFunc("/api/sync/runs", s.app.SyncHandler.ListRunsHandler)  // GET - run history
	mux.HandleFunc("/api/sync/trigger", s.handleSchedulerTrigger)        // POST - background pass

	// API routes - Orders
	mux.HandleFunc("/api/orders", s.app.OrdersHandler.ListOrdersHandler)      // GET ?stage=
	mux.HandleFunc("/api/orders/advance", s.app.OrdersHandler.AdvanceHandler) // POST ?stage=

	// API routes - Processed-order ledger
	mux.HandleFunc("/api/ledger", s.app.OrdersHandler.LedgerHandler)            // GET
	mux.HandleFunc("/api/ledger/clear", s.app.OrdersHandler.ClearLedgerHandler) // POST

	// API routes - Trello maintenance
	mux.HandleFunc("/api/trello/test", s.app.TrelloHandler.TestConnectionHandler)         // POST
	mux.HandleFunc("/api/trello/labels", s.app.TrelloHandler.EnsureLabelsHandler)         // POST
	mux.HandleFunc("/api/trello/refresh-titles", s.app.TrelloHandler.RefreshTitlesHandler) // POST

	// API routes - Marketplace session
	mux.HandleFunc("/api/marketplace/login", s.app.MarketplaceHandler.LoginHandler)     // POST
	mux.HandleFunc("/api/marketplace/session", s.app.MarketplaceHandler.SessionHandler) // GET

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{
			http.MethodGet: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
			},
		})
	})

	return mux
}

// handleSchedulerTrigger starts a pass in the background and returns immediately
func (s *Server) handleSchedulerTrigger(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodPost: func(w http.ResponseWriter, r *http.Request) {
			if err := s.app.SchedulerService.TriggerNow(); err != nil {
				writeJSONError(w, http.StatusConflict, err.Error())
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"status":"started","message":"Synchronization pass started"}`))
		},
	})
}
