package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/ordersync/internal/models"
)

// ErrRunNotFound is returned when a sync run id is unknown
var ErrRunNotFound = errors.New("sync run not found")

// RunStorage persists synchronization run summaries
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.SyncRun) error
	GetRun(ctx context.Context, id string) (*models.SyncRun, error)
	// ListRuns returns runs most recent first; limit <= 0 returns all
	ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
	LastRun(ctx context.Context) (*models.SyncRun, error)
}
