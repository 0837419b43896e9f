package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/trello"
)

type mockSyncService struct {
	mock.Mock
}

func (m *mockSyncService) RunFullSynchronizationPass(ctx context.Context, trigger string, onServiceReconciled interfaces.ServiceReconciledFunc) (*models.SyncResult, error) {
	args := m.Called(ctx, trigger, onServiceReconciled)
	result, _ := args.Get(0).(*models.SyncResult)
	return result, args.Error(1)
}

func (m *mockSyncService) ListOrders(ctx context.Context, stage models.Stage) ([]models.Order, error) {
	args := m.Called(ctx, stage)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *mockSyncService) AdvanceStage(ctx context.Context, stage models.Stage) ([]models.OrderRef, error) {
	args := m.Called(ctx, stage)
	refs, _ := args.Get(0).([]models.OrderRef)
	return refs, args.Error(1)
}

func (m *mockSyncService) ClearLedger(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSyncService) LedgerEntries() []string {
	entries, _ := m.Called().Get(0).([]string)
	return entries
}

func (m *mockSyncService) IsRunning() bool {
	return m.Called().Bool(0)
}

type mockBoard struct {
	mock.Mock
}

func (m *mockBoard) TestConnection(ctx context.Context) (*models.Board, error) {
	args := m.Called(ctx)
	board, _ := args.Get(0).(*models.Board)
	return board, args.Error(1)
}

func (m *mockBoard) EnsureStatusLabels(ctx context.Context) (*trello.LabelSetupResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*trello.LabelSetupResult)
	return result, args.Error(1)
}

func (m *mockBoard) RefreshCardTitles(ctx context.Context) (*trello.RefreshResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*trello.RefreshResult)
	return result, args.Error(1)
}

type mockSession struct {
	mock.Mock
}

func (m *mockSession) OpenMarketplaceLogin(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockSession) MarketplaceSession(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) BroadcastServiceReconciled(order models.Order, service models.Service, outcome models.ReconcileOutcome) {
	m.Called(order, service, outcome)
}

func (m *mockEvents) BroadcastSyncCompleted(result *models.SyncResult, err error) {
	m.Called(result, err)
}

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) Start() error      { return m.Called().Error(0) }
func (m *mockScheduler) Stop() error       { return m.Called().Error(0) }
func (m *mockScheduler) TriggerNow() error { return m.Called().Error(0) }
func (m *mockScheduler) IsRunning() bool   { return m.Called().Bool(0) }

func (m *mockScheduler) Status() interfaces.SchedulerStatus {
	return m.Called().Get(0).(interfaces.SchedulerStatus)
}

type mockRunStorage struct {
	mock.Mock
}

func (m *mockRunStorage) SaveRun(ctx context.Context, run *models.SyncRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRunStorage) GetRun(ctx context.Context, id string) (*models.SyncRun, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*models.SyncRun)
	return run, args.Error(1)
}

func (m *mockRunStorage) ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]models.SyncRun)
	return runs, args.Error(1)
}

func (m *mockRunStorage) LastRun(ctx context.Context) (*models.SyncRun, error) {
	args := m.Called(ctx)
	run, _ := args.Get(0).(*models.SyncRun)
	return run, args.Error(1)
}

type browserUp bool

func (b browserUp) IsRunning() bool { return bool(b) }
