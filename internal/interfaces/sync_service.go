package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/ordersync/internal/models"
)

// ErrStageNotAdvanceable is returned by AdvanceStage for read-only stages
var ErrStageNotAdvanceable = errors.New("stage is not advanced automatically")

// ServiceReconciledFunc is invoked after each service is reconciled during a pass
type ServiceReconciledFunc func(order models.Order, service models.Service, outcome models.ReconcileOutcome)

// SyncService is the synchronization engine's entry points
type SyncService interface {
	RunFullSynchronizationPass(ctx context.Context, trigger string, onServiceReconciled ServiceReconciledFunc) (*models.SyncResult, error)
	ListOrders(ctx context.Context, stage models.Stage) ([]models.Order, error)
	AdvanceStage(ctx context.Context, stage models.Stage) ([]models.OrderRef, error)
	ClearLedger(ctx context.Context) error
	LedgerEntries() []string
	IsRunning() bool
}
