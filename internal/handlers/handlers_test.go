package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/trello"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRunSyncHandler(t *testing.T) {
	syncService := &mockSyncService{}
	events := &mockEvents{}
	result := &models.SyncResult{
		RunID:           "run_1",
		OrdersProcessed: 2,
		Created:         1,
		Skipped:         1,
		Errors:          []string{},
		Orders:          []models.Order{{OrderID: "2"}, {OrderID: "3"}},
	}
	syncService.On("IsRunning").Return(false)
	syncService.On("RunFullSynchronizationPass", mock.Anything, models.TriggerManual, mock.Anything).Return(result, nil)
	events.On("BroadcastSyncCompleted", result, nil).Return()

	h := NewSyncHandler(syncService, nil, events, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.RunSyncHandler(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["orders_processed"])
	assert.Equal(t, float64(1), body["cards_created"])
	assert.Equal(t, float64(0), body["cards_updated"])
	assert.Equal(t, float64(1), body["cards_skipped"])
	assert.Len(t, body["orders"], 2)
	events.AssertExpectations(t)
}

func TestRunSyncHandler_NotConfigured(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("IsRunning").Return(false)
	syncService.On("RunFullSynchronizationPass", mock.Anything, models.TriggerManual, mock.Anything).
		Return(nil, interfaces.ErrBoardNotConfigured)

	h := NewSyncHandler(syncService, nil, nil, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.RunSyncHandler(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, interfaces.ErrBoardNotConfigured.Error(), body["error"])
}

func TestRunSyncHandler_Busy(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("IsRunning").Return(true)

	h := NewSyncHandler(syncService, nil, nil, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.RunSyncHandler(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	syncService.AssertNotCalled(t, "RunFullSynchronizationPass", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSyncHandler_MethodNotAllowed(t *testing.T) {
	h := NewSyncHandler(&mockSyncService{}, nil, nil, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.RunSyncHandler(rec, httptest.NewRequest(http.MethodGet, "/api/sync", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListRunsHandler(t *testing.T) {
	runs := &mockRunStorage{}
	runs.On("ListRuns", mock.Anything, 5).Return([]models.SyncRun{{ID: "run_2"}, {ID: "run_1"}}, nil)

	h := NewSyncHandler(&mockSyncService{}, runs, nil, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.ListRunsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/sync/runs?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["count"])
	runs.AssertExpectations(t)
}

func TestListRunsHandler_NoStorage(t *testing.T) {
	h := NewSyncHandler(&mockSyncService{}, nil, nil, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.ListRunsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/sync/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])
}

func TestListOrdersHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStage  models.Stage
		wantStatus int
	}{
		{"canonical", "?stage=delivering", models.StageDelivering, http.StatusOK},
		{"display form", "?stage=New%20Order", models.StageNewOrder, http.StatusOK},
		{"missing", "", "", http.StatusBadRequest},
		{"unknown", "?stage=shipped", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncService := &mockSyncService{}
			if tt.wantStage != "" {
				syncService.On("ListOrders", mock.Anything, tt.wantStage).
					Return([]models.Order{{OrderID: "7", Status: "Delivering"}}, nil)
			}

			h := NewOrdersHandler(syncService, arbor.NewLogger())
			rec := httptest.NewRecorder()
			h.ListOrdersHandler(rec, httptest.NewRequest(http.MethodGet, "/api/orders"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				body := decode(t, rec)
				assert.Equal(t, string(tt.wantStage), body["stage"])
				assert.Equal(t, float64(1), body["count"])
			}
			syncService.AssertExpectations(t)
		})
	}
}

func TestAdvanceHandler(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("AdvanceStage", mock.Anything, models.StageNewOrder).
		Return([]models.OrderRef{{OrderID: "1"}}, nil)

	h := NewOrdersHandler(syncService, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.AdvanceHandler(rec, httptest.NewRequest(http.MethodPost, "/api/orders/advance?stage=new_order", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestAdvanceHandler_ReadOnlyStage(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("AdvanceStage", mock.Anything, models.StageCompleted).
		Return(nil, fmt.Errorf("%w: completed", interfaces.ErrStageNotAdvanceable))

	h := NewOrdersHandler(syncService, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.AdvanceHandler(rec, httptest.NewRequest(http.MethodPost, "/api/orders/advance?stage=completed", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerHandlers(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("LedgerEntries").Return([]string{"1", "2"})
	syncService.On("ClearLedger", mock.Anything).Return(nil)

	h := NewOrdersHandler(syncService, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.LedgerHandler(rec, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"1", "2"}, decode(t, rec)["orders"])

	rec = httptest.NewRecorder()
	h.ClearLedgerHandler(rec, httptest.NewRequest(http.MethodPost, "/api/ledger/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode(t, rec)["status"])
	syncService.AssertCalled(t, "ClearLedger", mock.Anything)
}

func TestTrelloHandlers(t *testing.T) {
	board := &mockBoard{}
	board.On("TestConnection", mock.Anything).Return(&models.Board{ID: "board1", Name: "Orders"}, nil)
	board.On("EnsureStatusLabels", mock.Anything).
		Return(&trello.LabelSetupResult{Created: []string{"DELIVERING"}, Existing: []string{}}, nil)
	board.On("RefreshCardTitles", mock.Anything).
		Return(&trello.RefreshResult{Total: 3, Updated: 2, Skipped: 1, Errors: []string{}}, nil)

	h := NewTrelloHandler(board, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.TestConnectionHandler(rec, httptest.NewRequest(http.MethodPost, "/api/trello/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Orders", decode(t, rec)["board"].(map[string]interface{})["name"])

	rec = httptest.NewRecorder()
	h.EnsureLabelsHandler(rec, httptest.NewRequest(http.MethodPost, "/api/trello/labels", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"DELIVERING"}, decode(t, rec)["created"])

	rec = httptest.NewRecorder()
	h.RefreshTitlesHandler(rec, httptest.NewRequest(http.MethodPost, "/api/trello/refresh-titles", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["updated"])
}

func TestTrelloHandlers_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not configured", interfaces.ErrBoardNotConfigured, http.StatusPreconditionFailed},
		{"api error", fmt.Errorf("failed to fetch board: %w", &trello.APIError{StatusCode: 401, Message: "invalid token", Endpoint: "/boards/board1"}), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &mockBoard{}
			board.On("TestConnection", mock.Anything).Return(nil, tt.err)

			h := NewTrelloHandler(board, arbor.NewLogger())
			rec := httptest.NewRecorder()
			h.TestConnectionHandler(rec, httptest.NewRequest(http.MethodPost, "/api/trello/test", nil))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMarketplaceHandlers(t *testing.T) {
	session := &mockSession{}
	session.On("OpenMarketplaceLogin", mock.Anything).Return("https://market.test/login", nil)
	session.On("MarketplaceSession", mock.Anything).Return(false, nil)

	h := NewMarketplaceHandler(session, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/marketplace/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://market.test/login", decode(t, rec)["login_url"])

	rec = httptest.NewRecorder()
	h.SessionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/marketplace/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["logged_in"])
}

func TestGetStatusHandler(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("IsRunning").Return(false)
	syncService.On("LedgerEntries").Return([]string{"1"})

	scheduler := &mockScheduler{}
	scheduler.On("Status").Return(interfaces.SchedulerStatus{Enabled: true, Running: true, Schedule: "@every 2m"})

	runs := &mockRunStorage{}
	finished := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	runs.On("LastRun", mock.Anything).Return(&models.SyncRun{ID: "run_1", FinishedAt: finished}, nil)

	h := NewStatusHandler(syncService, scheduler, runs, browserUp(true), true, arbor.NewLogger())
	rec := httptest.NewRecorder()
	h.GetStatusHandler(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.BrowserRunning)
	assert.True(t, status.TrelloConfigured)
	assert.False(t, status.SyncRunning)
	assert.Equal(t, 1, status.LedgerSize)
	require.NotNil(t, status.Scheduler)
	assert.Equal(t, "@every 2m", status.Scheduler.Schedule)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, "run_1", status.LastRun.ID)
}
