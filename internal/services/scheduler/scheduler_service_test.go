package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

type mockSyncService struct {
	mock.Mock
}

func (m *mockSyncService) RunFullSynchronizationPass(ctx context.Context, trigger string, cb interfaces.ServiceReconciledFunc) (*models.SyncResult, error) {
	args := m.Called(ctx, trigger, cb)
	result, _ := args.Get(0).(*models.SyncResult)
	return result, args.Error(1)
}

func (m *mockSyncService) ListOrders(ctx context.Context, stage models.Stage) ([]models.Order, error) {
	args := m.Called(ctx, stage)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockSyncService) AdvanceStage(ctx context.Context, stage models.Stage) ([]models.OrderRef, error) {
	args := m.Called(ctx, stage)
	return args.Get(0).([]models.OrderRef), args.Error(1)
}

func (m *mockSyncService) ClearLedger(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSyncService) LedgerEntries() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockSyncService) IsRunning() bool {
	return m.Called().Bool(0)
}

func testSchedulerConfig() common.SchedulerConfig {
	return common.SchedulerConfig{
		Enabled:      true,
		Schedule:     "@every 1h",
		InitialDelay: "1h",
	}
}

func TestRunScheduledPass(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("IsRunning").Return(false)
	syncService.On("RunFullSynchronizationPass", mock.Anything, models.TriggerScheduled, mock.Anything).
		Return(&models.SyncResult{OrdersProcessed: 2, Created: 1}, nil).Once()

	var completed *models.SyncResult
	s := NewService(syncService, testSchedulerConfig(), Hooks{
		OnPassCompleted: func(result *models.SyncResult, err error) {
			completed = result
		},
	}, arbor.NewLogger())

	s.runScheduledPass()

	syncService.AssertExpectations(t)
	require.NotNil(t, completed)
	assert.Equal(t, 2, completed.OrdersProcessed)

	status := s.Status()
	assert.NotNil(t, status.LastRun)
	assert.Empty(t, status.LastError)
	assert.False(t, status.IsProcessing)
}

func TestRunScheduledPass_SkipsWhilePassRunning(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("IsRunning").Return(true)

	s := NewService(syncService, testSchedulerConfig(), Hooks{}, arbor.NewLogger())
	s.runScheduledPass()

	syncService.AssertNotCalled(t, "RunFullSynchronizationPass", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, ErrPassInProgress, s.TriggerNow())
}

func TestRunScheduledPass_RecordsError(t *testing.T) {
	syncService := &mockSyncService{}
	syncService.On("IsRunning").Return(false)
	syncService.On("RunFullSynchronizationPass", mock.Anything, models.TriggerScheduled, mock.Anything).
		Return(nil, interfaces.ErrBoardNotConfigured)

	var gotErr error
	s := NewService(syncService, testSchedulerConfig(), Hooks{
		OnPassCompleted: func(result *models.SyncResult, err error) { gotErr = err },
	}, arbor.NewLogger())

	s.runScheduledPass()

	assert.True(t, errors.Is(gotErr, interfaces.ErrBoardNotConfigured))
	assert.Equal(t, interfaces.ErrBoardNotConfigured.Error(), s.Status().LastError)
}

func TestStartStop(t *testing.T) {
	syncService := &mockSyncService{}
	s := NewService(syncService, testSchedulerConfig(), Hooks{}, arbor.NewLogger())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(), "second start is rejected")

	status := s.Status()
	require.NotNil(t, status.NextRun)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *status.NextRun, time.Minute)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	syncService.AssertNotCalled(t, "RunFullSynchronizationPass", mock.Anything, mock.Anything, mock.Anything)
}

func TestStart_Disabled(t *testing.T) {
	config := testSchedulerConfig()
	config.Enabled = false
	s := NewService(&mockSyncService{}, config, Hooks{}, arbor.NewLogger())

	require.NoError(t, s.Start())
	assert.False(t, s.IsRunning())
	assert.False(t, s.Status().Enabled)
}

func TestStart_InvalidSchedule(t *testing.T) {
	config := testSchedulerConfig()
	config.Schedule = "not a schedule"
	s := NewService(&mockSyncService{}, config, Hooks{}, arbor.NewLogger())

	assert.Error(t, s.Start())
}

func TestStop_DisabledWaitsForTriggeredPass(t *testing.T) {
	config := testSchedulerConfig()
	config.Enabled = false

	started := make(chan struct{})
	finished := make(chan struct{})
	syncService := &mockSyncService{}
	syncService.On("IsRunning").Return(false)
	syncService.On("RunFullSynchronizationPass", mock.Anything, models.TriggerScheduled, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			close(started)
			<-ctx.Done()
			close(finished)
		}).
		Return(nil, context.Canceled)

	s := NewService(syncService, config, Hooks{}, arbor.NewLogger())
	require.NoError(t, s.Start())
	require.NoError(t, s.TriggerNow())

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered pass did not start")
	}

	require.NoError(t, s.Stop())

	select {
	case <-finished:
	default:
		t.Fatal("Stop returned while the triggered pass was still running")
	}

	assert.Equal(t, ErrSchedulerStopped, s.TriggerNow())
	assert.NoError(t, s.Stop(), "second stop is a no-op")
}
