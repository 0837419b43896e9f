// -----------------------------------------------------------------------
// Last Modified: Saturday, 17th October 2026 10:20:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/models"
)

// Event types sent to websocket clients
const (
	EventHello             = "hello"
	EventServiceReconciled = "service_reconciled"
	EventSyncCompleted     = "sync_completed"
)

// defaultWriteWait bounds a single write to one client
const defaultWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope of every websocket event
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// HelloPayload is sent once on connect
type HelloPayload struct {
	ServerInstanceID string `json:"server_instance_id"`
	Version          string `json:"version"`
}

// ServiceReconciledPayload describes one reconciled service
type ServiceReconciledPayload struct {
	OrderID       string                 `json:"order_id"`
	Status        string                 `json:"status"`
	Category      string                 `json:"category"`
	Console       models.Console         `json:"console"`
	Quantity      string                 `json:"quantity,omitempty"`
	Outcome       models.ReconcileAction `json:"outcome"`
	CorrelationID string                 `json:"correlation_id"`
	Title         string                 `json:"title"`
	CardID        string                 `json:"card_id,omitempty"`
	Labeled       bool                   `json:"labeled"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	Timestamp     string                 `json:"timestamp"`
}

// SyncCompletedPayload summarizes a finished pass
type SyncCompletedPayload struct {
	RunID           string   `json:"run_id,omitempty"`
	OrdersProcessed int      `json:"orders_processed"`
	OrdersAdvanced  int      `json:"orders_advanced"`
	Created         int      `json:"cards_created"`
	Updated         int      `json:"cards_updated"`
	Skipped         int      `json:"cards_skipped"`
	Errors          []string `json:"errors"`
	Failed          string   `json:"failed,omitempty"`
	Timestamp       string   `json:"timestamp"`
}

// WebSocketHandler fans synchronization events out to every connected client
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	serverInstanceID string // Clients use it to detect a server restart
	writeWait        time.Duration
}

var _ SyncEvents = (*WebSocketHandler)(nil)

func NewWebSocketHandler(logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		serverInstanceID: uuid.New().String(),
		writeWait:        defaultWriteWait,
	}

	logger.Debug().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")
	return h
}

// HandleWebSocket upgrades the connection and keeps it registered until the client leaves
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	mutex := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = mutex
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	h.send(conn, mutex, WSMessage{
		Type: EventHello,
		Payload: HelloPayload{
			ServerInstanceID: h.serverInstanceID,
			Version:          common.GetVersion(),
		},
	})

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", remaining)
	}()

	// Read messages from client (keep connection alive)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastServiceReconciled sends one reconcile outcome to all clients
func (h *WebSocketHandler) BroadcastServiceReconciled(order models.Order, service models.Service, outcome models.ReconcileOutcome) {
	h.broadcast(WSMessage{
		Type: EventServiceReconciled,
		Payload: ServiceReconciledPayload{
			OrderID:       order.OrderID,
			Status:        order.Status,
			Category:      service.Category,
			Console:       service.Console,
			Quantity:      service.Quantity,
			Outcome:       outcome.Action,
			CorrelationID: outcome.CorrelationID,
			Title:         outcome.Title,
			CardID:        outcome.CardID,
			Labeled:       outcome.Labeled,
			Success:       outcome.Success(),
			Error:         outcome.Error,
			Timestamp:     time.Now().Format(time.RFC3339),
		},
	})
}

// BroadcastSyncCompleted sends the pass summary, or the reason it failed
func (h *WebSocketHandler) BroadcastSyncCompleted(result *models.SyncResult, err error) {
	payload := SyncCompletedPayload{
		Errors:    []string{},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if result != nil {
		payload.RunID = result.RunID
		payload.OrdersProcessed = result.OrdersProcessed
		payload.OrdersAdvanced = result.OrdersAdvanced
		payload.Created = result.Created
		payload.Updated = result.Updated
		payload.Skipped = result.Skipped
		if result.Errors != nil {
			payload.Errors = result.Errors
		}
	}
	if err != nil {
		payload.Failed = err.Error()
	}

	h.broadcast(WSMessage{Type: EventSyncCompleted, Payload: payload})
}

func (h *WebSocketHandler) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal websocket message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		h.write(conn, mutexes[i], msg.Type, data)
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, mutex *sync.Mutex, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal websocket message")
		return
	}

	h.write(conn, mutex, msg.Type, data)
}

// write sends data within writeWait. A client that cannot keep up is
// disconnected; its read loop then unregisters it.
func (h *WebSocketHandler) write(conn *websocket.Conn, mutex *sync.Mutex, msgType string, data []byte) {
	mutex.Lock()
	defer mutex.Unlock()

	conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Warn().Err(err).Str("type", msgType).Msg("Failed to send message to client, disconnecting")
		conn.Close()
	}
}
