package handlers

import (
	"context"

	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/trello"
)

// BoardMaintainer defines the Trello maintenance operations exposed over HTTP.
type BoardMaintainer interface {
	TestConnection(ctx context.Context) (*models.Board, error)
	EnsureStatusLabels(ctx context.Context) (*trello.LabelSetupResult, error)
	RefreshCardTitles(ctx context.Context) (*trello.RefreshResult, error)
}

// MarketplaceSession defines the manual sign-in helpers of the page session.
type MarketplaceSession interface {
	OpenMarketplaceLogin(ctx context.Context) (string, error)
	MarketplaceSession(ctx context.Context) (bool, error)
}

// SyncEvents receives the progress of a synchronization pass.
type SyncEvents interface {
	BroadcastServiceReconciled(order models.Order, service models.Service, outcome models.ReconcileOutcome)
	BroadcastSyncCompleted(result *models.SyncResult, err error)
}

// BrowserChecker reports whether the browser process is up.
type BrowserChecker interface {
	IsRunning() bool
}
