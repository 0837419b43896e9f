package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

var (
	// ErrPassInProgress is returned by TriggerNow while a pass is running
	ErrPassInProgress = errors.New("synchronization pass already in progress")
	// ErrSchedulerStopped is returned by TriggerNow after Stop
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

// Hooks receive the events of scheduled passes
type Hooks struct {
	OnServiceReconciled interfaces.ServiceReconciledFunc
	OnPassCompleted     func(result *models.SyncResult, err error)
}

// Service implements SchedulerService interface
type Service struct {
	syncService interfaces.SyncService
	config      common.SchedulerConfig
	hooks       Hooks
	cron        *cron.Cron
	logger      arbor.ILogger

	mu           sync.Mutex // Protects the fields below
	isProcessing bool
	running      bool
	stopped      bool
	entryID      cron.EntryID
	lastRun      *time.Time
	lastError    string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new scheduler service
func NewService(syncService interfaces.SyncService, config common.SchedulerConfig, hooks Hooks, logger arbor.ILogger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		syncService: syncService,
		config:      config,
		hooks:       hooks,
		cron:        cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

var _ interfaces.SchedulerService = (*Service)(nil)

// Start begins the scheduler with the configured cron expression
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if s.stopped {
		return ErrSchedulerStopped
	}

	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled, synchronization runs on demand only")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, s.runScheduledPass)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true

	initialDelay := common.ParseDuration(s.config.InitialDelay, 30*time.Second)
	s.wg.Add(1)
	common.SafeGo(s.logger, "scheduler-initial-pass", func() {
		defer s.wg.Done()

		timer := time.NewTimer(initialDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
			s.runScheduledPass()
		}
	})

	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Dur("initial_delay", initialDelay).
		Msg("Scheduler started")

	return nil
}

// Stop halts the cron loop, cancels any pass in flight (scheduled or
// triggered) and waits for it to return. Safe to call more than once.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	s.cancel()
	if wasRunning {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// TriggerNow runs a pass in the background
func (s *Service) TriggerNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	if s.isProcessing || s.syncService.IsRunning() {
		return ErrPassInProgress
	}

	s.wg.Add(1)
	common.SafeGo(s.logger, "scheduler-trigger", func() {
		defer s.wg.Done()
		s.runScheduledPass()
	})
	return nil
}

// IsRunning returns true if the cron loop is active
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the scheduler state including the next cron fire time
func (s *Service) Status() interfaces.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := interfaces.SchedulerStatus{
		Enabled:      s.config.Enabled,
		Running:      s.running,
		Schedule:     s.config.Schedule,
		IsProcessing: s.isProcessing,
		LastRun:      s.lastRun,
		LastError:    s.lastError,
	}
	if s.running {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

func (s *Service) runScheduledPass() {
	// Panic recovery to prevent service crash
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled pass")
		}
	}()

	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		s.logger.Debug().Msg("Previous scheduled pass still running, skipping this cycle")
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	if s.syncService.IsRunning() {
		s.logger.Debug().Msg("Synchronization pass already running, skipping this cycle")
		return
	}

	s.logger.Info().Msg("Starting scheduled synchronization pass")
	started := time.Now()

	result, err := s.syncService.RunFullSynchronizationPass(s.ctx, models.TriggerScheduled, s.hooks.OnServiceReconciled)

	s.mu.Lock()
	s.lastRun = &started
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled synchronization pass failed")
	} else {
		s.logger.Info().
			Int("orders", result.OrdersProcessed).
			Int("created", result.Created).
			Int("updated", result.Updated).
			Int("errors", len(result.Errors)).
			Dur("duration", time.Since(started)).
			Msg("Scheduled synchronization pass completed")
	}

	if s.hooks.OnPassCompleted != nil {
		s.hooks.OnPassCompleted(result, err)
	}
}
