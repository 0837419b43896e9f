// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 2:30:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

// Package orchestrator walks the marketplace stages, drives the early
// transitions and reconciles every observed order against the board.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/services/extraction"
	"github.com/ternarybob/ordersync/internal/services/marketplace"
	"github.com/ternarybob/ordersync/internal/trello"
)

// Service implements interfaces.SyncService. Every operation that touches the
// page session holds pageMu, so HTTP and scheduled callers never overlap.
type Service struct {
	market     *marketplace.Service
	reconciler *trello.Reconciler
	ledger     interfaces.OrderLedger
	runs       interfaces.RunStorage
	advance    bool
	logger     arbor.ILogger

	pageMu  sync.Mutex
	running atomic.Bool
}

var _ interfaces.SyncService = (*Service)(nil)

// NewService creates the orchestrator. runs may be nil to skip run history.
func NewService(
	market *marketplace.Service,
	reconciler *trello.Reconciler,
	ledger interfaces.OrderLedger,
	runs interfaces.RunStorage,
	config common.MarketplaceConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		market:     market,
		reconciler: reconciler,
		ledger:     ledger,
		runs:       runs,
		advance:    config.AdvanceEnabled,
		logger:     logger,
	}
}

// IsRunning reports whether a full pass is in progress
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// RunFullSynchronizationPass advances NewOrder and Preparing orders, then reconciles
// every order of the read-only stages. Per-order failures are collected in the
// result; only a missing board configuration fails the call.
func (s *Service) RunFullSynchronizationPass(ctx context.Context, trigger string, onServiceReconciled interfaces.ServiceReconciledFunc) (*models.SyncResult, error) {
	run := &models.SyncRun{
		ID:        common.NewRunID(),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}

	if !s.reconciler.Configured() {
		s.logger.Error().Str("run_id", run.ID).Msg("Trello is not configured, synchronization aborted")
		run.FinishedAt = time.Now()
		run.Aborted = interfaces.ErrBoardNotConfigured.Error()
		s.saveRun(ctx, run)
		return nil, interfaces.ErrBoardNotConfigured
	}

	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	s.running.Store(true)
	defer s.running.Store(false)

	result := &models.SyncResult{
		RunID:  run.ID,
		Errors: []string{},
		Orders: []models.Order{},
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Str("trigger", trigger).
		Msg("Synchronization pass started")

	if s.advance {
		s.advanceAll(ctx, result)
	}

	seen := make(map[string]bool)
	for _, stage := range models.SyncStages {
		if ctx.Err() != nil {
			break
		}
		s.syncStage(ctx, stage, seen, result, onServiceReconciled)
	}

	if err := ctx.Err(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("pass interrupted: %v", err))
	}

	run.FinishedAt = time.Now()
	run.OrdersProcessed = result.OrdersProcessed
	run.OrdersAdvanced = result.OrdersAdvanced
	run.Created = result.Created
	run.Updated = result.Updated
	run.Skipped = result.Skipped
	run.Errors = result.Errors
	s.saveRun(ctx, run)

	s.logger.Info().
		Str("run_id", run.ID).
		Int("orders", result.OrdersProcessed).
		Int("advanced", result.OrdersAdvanced).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Dur("duration", run.Duration()).
		Msg("Synchronization pass completed")

	return result, nil
}

// advanceAll drives NewOrder then Preparing. A ledger that cannot be read
// disables NewOrder processing for this pass.
func (s *Service) advanceAll(ctx context.Context, result *models.SyncResult) {
	stages := []models.Stage{models.StageNewOrder, models.StagePreparing}

	if err := s.ledger.Load(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to load processed-order ledger, skipping new orders")
		result.Errors = append(result.Errors, fmt.Sprintf("ledger: %v", err))
		stages = stages[1:]
	}

	for _, stage := range stages {
		if ctx.Err() != nil {
			return
		}
		_, advanced, errs := s.advanceStage(ctx, stage)
		result.OrdersAdvanced += advanced
		result.Errors = append(result.Errors, errs...)
	}
}

// syncStage reconciles each order of one read-only stage that has not been seen earlier in the pass
func (s *Service) syncStage(ctx context.Context, stage models.Stage, seen map[string]bool, result *models.SyncResult, onServiceReconciled interfaces.ServiceReconciledFunc) {
	refs, err := s.market.ReadListing(ctx, stage)
	if err != nil {
		s.logger.Error().Str("stage", string(stage)).Err(err).Msg("Failed to read stage listing")
		result.Errors = append(result.Errors, fmt.Sprintf("%s listing: %v", stage, err))
		return
	}

	for _, ref := range refs {
		if ctx.Err() != nil {
			return
		}
		if seen[ref.OrderID] {
			continue
		}
		seen[ref.OrderID] = true

		order, err := s.fetchOrder(ctx, ref.OrderID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s: %v", ref.OrderID, err))
			continue
		}

		result.OrdersProcessed++
		result.Orders = append(result.Orders, *order)

		s.reconciler.ReconcileOrder(ctx, *order, func(service models.Service, outcome models.ReconcileOutcome) {
			result.Record(outcome)
			if onServiceReconciled != nil {
				onServiceReconciled(*order, service, outcome)
			}
		})
	}
}

// fetchOrder loads an order and extracts its services
func (s *Service) fetchOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.market.FetchOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, interfaces.ErrContentNotFound) {
			s.logger.Warn().Str("order_id", orderID).Err(err).Msg("Order page had no order data, skipping")
		} else {
			s.logger.Error().Str("order_id", orderID).Err(err).Msg("Failed to fetch order, skipping")
		}
		return nil, err
	}

	order.Services = extraction.ExtractServices(order.ProductName)
	return order, nil
}

// AdvanceStage drives the transition of every order on an advanceable stage's
// listing and returns the orders acted on. NewOrder orders already in the
// ledger are not acted on again.
func (s *Service) AdvanceStage(ctx context.Context, stage models.Stage) ([]models.OrderRef, error) {
	if !stage.Advanceable() {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrStageNotAdvanceable, stage)
	}

	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	if stage == models.StageNewOrder {
		if err := s.ledger.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load ledger: %w", err)
		}
	}

	attempted, _, errs := s.advanceStage(ctx, stage)
	if attempted == nil && len(errs) > 0 {
		return nil, errors.New(errs[0])
	}
	return attempted, nil
}

// advanceStage returns the orders acted on, how many reached the next stage, and per-order errors
func (s *Service) advanceStage(ctx context.Context, stage models.Stage) ([]models.OrderRef, int, []string) {
	refs, err := s.market.ReadListing(ctx, stage)
	if err != nil {
		s.logger.Error().Str("stage", string(stage)).Err(err).Msg("Failed to read stage listing")
		return nil, 0, []string{fmt.Sprintf("%s listing: %v", stage, err)}
	}

	attempted := []models.OrderRef{}
	advanced := 0
	var errs []string

	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		if stage == models.StageNewOrder && s.ledger.Contains(ref.OrderID) {
			s.logger.Debug().Str("order_id", ref.OrderID).Msg("Order already in ledger, not advancing again")
			continue
		}

		attempted = append(attempted, ref)
		transition, err := s.market.AdvanceOrder(ctx, ref, stage)
		if err != nil {
			s.logger.Error().
				Str("order_id", ref.OrderID).
				Str("stage", string(stage)).
				Err(err).
				Msg("Transition failed, order left for the next run")
			errs = append(errs, fmt.Sprintf("advance %s: %v", ref.OrderID, err))
		} else if transition.Outcome == marketplace.OutcomeAdvanced {
			advanced++
		}

		// Interrupted attempts are not recorded so the next run retries them
		if stage == models.StageNewOrder && ctx.Err() == nil {
			if err := s.ledger.Add(ctx, ref.OrderID); err != nil {
				s.logger.Error().Str("order_id", ref.OrderID).Err(err).Msg("Failed to persist ledger")
				errs = append(errs, fmt.Sprintf("ledger %s: %v", ref.OrderID, err))
			}
		}
	}

	s.logger.Info().
		Str("stage", string(stage)).
		Int("listed", len(refs)).
		Int("attempted", len(attempted)).
		Int("advanced", advanced).
		Msg("Stage transitions processed")

	return attempted, advanced, errs
}

// ListOrders reads a stage's listing and fetches every order on it.
// Orders whose page cannot be parsed are left out.
func (s *Service) ListOrders(ctx context.Context, stage models.Stage) ([]models.Order, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	refs, err := s.market.ReadListing(ctx, stage)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(refs))
	for _, ref := range refs {
		if ctx.Err() != nil {
			return orders, ctx.Err()
		}
		order, err := s.fetchOrder(ctx, ref.OrderID)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// ClearLedger empties the processed-order ledger
func (s *Service) ClearLedger(ctx context.Context) error {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	if err := s.ledger.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info().Msg("Processed-order ledger cleared")
	return nil
}

// LedgerEntries returns the order ids in the ledger as last loaded
func (s *Service) LedgerEntries() []string {
	return s.ledger.List()
}

// OpenMarketplaceLogin points the page session at the login page
func (s *Service) OpenMarketplaceLogin(ctx context.Context) (string, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	return s.market.OpenLogin(ctx)
}

// MarketplaceSession reports whether the page session is signed in
func (s *Service) MarketplaceSession(ctx context.Context) (bool, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	return s.market.IsLoggedIn(ctx)
}

func (s *Service) saveRun(ctx context.Context, run *models.SyncRun) {
	if s.runs == nil {
		return
	}
	// The pass context may already be cancelled; the record is still written
	if err := s.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn().Str("run_id", run.ID).Err(err).Msg("Failed to save sync run")
	}
}
