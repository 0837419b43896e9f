package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/models"
)

func dial(t *testing.T, handler *WebSocketHandler) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello WSMessage
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, EventHello, hello.Type)

	// The client is registered before the hello is written
	require.Eventually(t, func() bool { return handler.ClientCount() > 0 }, time.Second, 10*time.Millisecond)
	return conn
}

func readPayload(t *testing.T, conn *websocket.Conn, wantType string, payload interface{}) {
	t.Helper()

	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, wantType, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Payload, payload))
}

func TestBroadcastServiceReconciled(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	conn := dial(t, handler)

	order := models.Order{OrderID: "1001", Status: "Delivering"}
	service := models.Service{Service: "CASH + CARS", Console: models.ConsolePS5, Quantity: "100M", Category: models.CategoryCashAndCars}
	outcome := models.ReconcileOutcome{
		OrderID:       "1001",
		CorrelationID: "1001",
		Title:         "[PS5] 100M CASH + CARS",
		CardID:        "card1",
		Action:        models.ActionCreated,
		Labeled:       true,
	}
	handler.BroadcastServiceReconciled(order, service, outcome)

	var payload ServiceReconciledPayload
	readPayload(t, conn, EventServiceReconciled, &payload)
	assert.Equal(t, "1001", payload.OrderID)
	assert.Equal(t, models.CategoryCashAndCars, payload.Category)
	assert.Equal(t, models.ActionCreated, payload.Outcome)
	assert.Equal(t, "card1", payload.CardID)
	assert.True(t, payload.Success)
}

func TestBroadcastSyncCompleted(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	conn := dial(t, handler)

	handler.BroadcastSyncCompleted(&models.SyncResult{RunID: "run_1", OrdersProcessed: 3, Updated: 2}, nil)

	var payload SyncCompletedPayload
	readPayload(t, conn, EventSyncCompleted, &payload)
	assert.Equal(t, "run_1", payload.RunID)
	assert.Equal(t, 3, payload.OrdersProcessed)
	assert.Equal(t, 2, payload.Updated)
	assert.Empty(t, payload.Failed)
	assert.NotNil(t, payload.Errors)

	handler.BroadcastSyncCompleted(nil, errors.New("trello board is not configured"))

	readPayload(t, conn, EventSyncCompleted, &payload)
	assert.Equal(t, "trello board is not configured", payload.Failed)
}

func TestHandleWebSocket_ClientDisconnect(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	conn := dial(t, handler)
	require.Equal(t, 1, handler.ClientCount())

	conn.Close()
	assert.Eventually(t, func() bool { return handler.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcast_StalledClientDoesNotBlock(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	handler.writeWait = 100 * time.Millisecond
	dial(t, handler) // never reads again

	big := WSMessage{Type: EventServiceReconciled, Payload: strings.Repeat("x", 1<<20)}

	// Enough data to fill the socket buffers several times over
	for i := 0; i < 64 && handler.ClientCount() > 0; i++ {
		start := time.Now()
		handler.broadcast(big)
		require.Less(t, time.Since(start), 2*time.Second, "broadcast %d blocked", i)
	}

	assert.Eventually(t, func() bool { return handler.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
