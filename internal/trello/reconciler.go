// -----------------------------------------------------------------------
// Last Modified: Thursday, 15th October 2026 10:10:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package trello

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/services/extraction"
)

// Statuses that block opening a new card even when DELIVERING also appears
var createBlockers = []string{"COMPLETED", "DELIVERED", "ISSUES", "CANCELLED", "CANCEL REQUESTED", "CANCEL REQUEST"}

// CanCreate reports whether a card may be opened for an order with this status.
// Cards are only opened once an order is actively being delivered.
func CanCreate(status string) bool {
	upper := strings.ToUpper(status)
	if !strings.Contains(upper, "DELIVERING") {
		return false
	}
	for _, blocker := range createBlockers {
		if strings.Contains(upper, blocker) {
			return false
		}
	}
	return true
}

// Reconciler keeps one card per service in agreement with the order it came from.
// Calls are issued one at a time so that a lookup and its write complete
// before the next lookup starts.
type Reconciler struct {
	client     interfaces.BoardClient
	logger     arbor.ILogger
	writeDelay time.Duration
}

// NewReconciler creates a reconciler. writeDelay paces bulk card writes.
func NewReconciler(client interfaces.BoardClient, logger arbor.ILogger, writeDelay time.Duration) *Reconciler {
	return &Reconciler{
		client:     client,
		logger:     logger,
		writeDelay: writeDelay,
	}
}

// Configured reports whether the board client has all four identifiers
func (r *Reconciler) Configured() bool {
	return r.client.Configured()
}

// ReconcileOrder reconciles every service of order in order, calling onService after each.
// Services are extracted from the product name when the order carries none.
func (r *Reconciler) ReconcileOrder(ctx context.Context, order models.Order, onService func(models.Service, models.ReconcileOutcome)) []models.ReconcileOutcome {
	services := order.Services
	if len(services) == 0 {
		services = extraction.ExtractServices(order.ProductName)
	}

	outcomes := make([]models.ReconcileOutcome, 0, len(services))
	for i, service := range services {
		outcome := r.ReconcileService(ctx, order, service, i, len(services))
		outcomes = append(outcomes, outcome)
		if onService != nil {
			onService(service, outcome)
		}
	}
	return outcomes
}

// ReconcileService finds, updates or creates the card for the service at index
// of total services of order, then corrects its status label.
func (r *Reconciler) ReconcileService(ctx context.Context, order models.Order, service models.Service, index, total int) models.ReconcileOutcome {
	correlationID := models.CorrelationID(order.OrderID, index, total)
	title := extraction.RenderTitle(service)

	outcome := models.ReconcileOutcome{
		OrderID:       order.OrderID,
		CorrelationID: correlationID,
		Title:         title,
	}

	fail := func(err error) models.ReconcileOutcome {
		outcome.Error = err.Error()
		r.logger.Error().
			Str("order_id", order.OrderID).
			Str("correlation_id", correlationID).
			Err(err).
			Msg("Failed to reconcile service")
		return outcome
	}

	if !r.client.Configured() {
		outcome.Action = models.ActionFailed
		return fail(interfaces.ErrBoardNotConfigured)
	}

	card, err := r.FindCard(ctx, correlationID, order.OrderID, title, total)
	if err != nil {
		outcome.Action = models.ActionFailed
		return fail(err)
	}

	desc := BuildDescription(order, service, correlationID)

	if card != nil {
		if _, err := r.client.UpdateCard(ctx, card.ID, title, desc); err != nil {
			outcome.Action = models.ActionFailed
			outcome.CardID = card.ID
			return fail(fmt.Errorf("failed to update card %s: %w", card.ID, err))
		}
		outcome.Action = models.ActionUpdated
		outcome.CardID = card.ID
	} else {
		if !CanCreate(order.Status) {
			outcome.Action = models.ActionSkipped
			r.logger.Info().
				Str("order_id", order.OrderID).
				Str("correlation_id", correlationID).
				Str("status", order.Status).
				Msg("No card and status does not allow creation, skipping")
			return outcome
		}

		created, err := r.client.CreateCard(ctx, title, desc, r.client.ListID())
		if err != nil {
			outcome.Action = models.ActionFailed
			return fail(fmt.Errorf("failed to create card: %w", err))
		}
		outcome.Action = models.ActionCreated
		outcome.CardID = created.ID
	}

	labeled, err := r.correctLabels(ctx, outcome.CardID, order.Status)
	outcome.Labeled = labeled
	if err != nil {
		return fail(err)
	}

	r.logger.Info().
		Str("order_id", order.OrderID).
		Str("correlation_id", correlationID).
		Str("card_id", outcome.CardID).
		Str("action", string(outcome.Action)).
		Str("title", title).
		Bool("labeled", labeled).
		Msg("Service reconciled")

	return outcome
}

// FindCard scans the whole board for the card of correlationID. When the order has
// several services it falls back to a card of the same original order with the same title.
// Returns nil when no card matches.
func (r *Reconciler) FindCard(ctx context.Context, correlationID, orderID, title string, total int) (*models.Card, error) {
	cards, err := r.client.ListBoardCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list board cards: %w", err)
	}

	for i := range cards {
		if HasCorrelationID(cards[i].Desc, correlationID) {
			return &cards[i], nil
		}
	}

	if total > 1 {
		for i := range cards {
			if HasOriginalOrderID(cards[i].Desc, orderID) && cards[i].Name == title {
				return &cards[i], nil
			}
		}
	}

	return nil, nil
}
