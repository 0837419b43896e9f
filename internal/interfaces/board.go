package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/ordersync/internal/models"
)

var (
	// ErrBoardNotConfigured is the precondition failure for every board call
	ErrBoardNotConfigured = errors.New("trello board is not configured")

	// ErrLabelNotMapped is returned when an order status has no status label
	ErrLabelNotMapped = errors.New("status has no label mapping")
)

// BoardClient is the tracking-board REST surface consumed by the reconciler.
type BoardClient interface {
	Configured() bool
	BoardID() string
	ListID() string

	GetBoard(ctx context.Context) (*models.Board, error)
	ListBoardCards(ctx context.Context) ([]models.Card, error)
	ListListCards(ctx context.Context, listID string) ([]models.Card, error)
	GetCardLabelIDs(ctx context.Context, cardID string) ([]string, error)
	CreateCard(ctx context.Context, name, desc, listID string) (*models.Card, error)
	UpdateCard(ctx context.Context, cardID, name, desc string) (*models.Card, error)
	SetCardLabels(ctx context.Context, cardID string, labelIDs []string) error

	ListLabels(ctx context.Context) ([]models.Label, error)
	CreateLabel(ctx context.Context, name, color string) (*models.Label, error)
}
