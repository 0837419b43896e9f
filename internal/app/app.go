// -----------------------------------------------------------------------
// Last Modified: Saturday, 17th October 2026 11:40:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/handlers"
	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/services/browser"
	"github.com/ternarybob/ordersync/internal/services/ledger"
	"github.com/ternarybob/ordersync/internal/services/marketplace"
	"github.com/ternarybob/ordersync/internal/services/orchestrator"
	"github.com/ternarybob/ordersync/internal/services/scheduler"
	"github.com/ternarybob/ordersync/internal/storage"
	"github.com/ternarybob/ordersync/internal/trello"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Page session and board
	Browser     *browser.ChromeDriver
	Marketplace *marketplace.Service
	Trello      *trello.Client
	Reconciler  *trello.Reconciler
	Ledger      *ledger.FileLedger

	// Synchronization
	SyncService      *orchestrator.Service
	SchedulerService interfaces.SchedulerService

	// HTTP handlers
	WSHandler          *handlers.WebSocketHandler
	StatusHandler      *handlers.StatusHandler
	SyncHandler        *handlers.SyncHandler
	OrdersHandler      *handlers.OrdersHandler
	TrelloHandler      *handlers.TrelloHandler
	MarketplaceHandler *handlers.MarketplaceHandler
}

// New wires the application. No browser is launched until the first page operation.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Created early so scheduler hooks can broadcast
	app.WSHandler = handlers.NewWebSocketHandler(app.Logger)

	if err := app.initServices(); err != nil {
		app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Bool("trello_configured", cfg.Trello.IsConfigured()).
		Bool("advance_enabled", cfg.Marketplace.AdvanceEnabled).
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes the services in dependency order:
// browser -> marketplace -> board -> ledger -> orchestrator -> scheduler
func (a *App) initServices() error {
	a.Browser = browser.NewChromeDriver(&a.Config.Browser, a.Logger)
	a.Marketplace = marketplace.NewService(a.Browser, a.Config.Marketplace, a.Logger)

	a.Trello = trello.NewClient(a.Config.Trello, trello.WithLogger(a.Logger))
	a.Reconciler = trello.NewReconciler(
		a.Trello,
		a.Logger,
		common.ParseDuration(a.Config.Trello.WriteDelay, 500*time.Millisecond),
	)
	if !a.Reconciler.Configured() {
		a.Logger.Warn().Msg("Trello is not configured (api_key, api_token, board_id, list_id); synchronization passes will be refused")
	}

	a.Ledger = ledger.NewFileLedger(a.Config.Marketplace.LedgerPath, a.Logger)
	if err := a.Ledger.Load(context.Background()); err != nil {
		// The pass reloads it and skips new orders while it stays unreadable
		a.Logger.Warn().Err(err).Msg("Failed to load processed-order ledger")
	}

	a.SyncService = orchestrator.NewService(
		a.Marketplace,
		a.Reconciler,
		a.Ledger,
		a.StorageManager.RunStorage(),
		a.Config.Marketplace,
		a.Logger,
	)

	schedulerService := scheduler.NewService(
		a.SyncService,
		a.Config.Scheduler,
		scheduler.Hooks{
			OnServiceReconciled: a.WSHandler.BroadcastServiceReconciled,
			OnPassCompleted: func(result *models.SyncResult, err error) {
				a.WSHandler.BroadcastSyncCompleted(result, err)
			},
		},
		a.Logger,
	)
	if err := schedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	a.SchedulerService = schedulerService

	return nil
}

// initHandlers initializes the HTTP handlers
func (a *App) initHandlers() {
	runStorage := a.StorageManager.RunStorage()

	a.StatusHandler = handlers.NewStatusHandler(
		a.SyncService,
		a.SchedulerService,
		runStorage,
		a.Browser,
		a.Config.Trello.IsConfigured(),
		a.Logger,
	)
	a.SyncHandler = handlers.NewSyncHandler(a.SyncService, runStorage, a.WSHandler, a.Logger)
	a.OrdersHandler = handlers.NewOrdersHandler(a.SyncService, a.Logger)
	a.TrelloHandler = handlers.NewTrelloHandler(a.Reconciler, a.Logger)
	a.MarketplaceHandler = handlers.NewMarketplaceHandler(a.SyncService, a.Logger)
}

// Close stops the scheduler, then closes the browser and the database.
// The HTTP server is shut down by the caller before Close.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.Browser != nil {
		if err := a.Browser.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close browser")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
