package interfaces

import "time"

// SchedulerStatus is the state of the periodic synchronization pass
type SchedulerStatus struct {
	Enabled      bool       `json:"enabled"`
	Running      bool       `json:"running"`
	Schedule     string     `json:"schedule"`
	IsProcessing bool       `json:"is_processing"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// SchedulerService runs full synchronization passes on a cron schedule
type SchedulerService interface {
	// Start registers the pass and starts the cron loop. A disabled scheduler is a no-op.
	Start() error

	// Stop halts the cron loop and waits for a running pass to return
	Stop() error

	// TriggerNow starts a pass in the background unless one is already running
	TriggerNow() error

	// IsRunning returns true if the cron loop is active
	IsRunning() bool

	Status() SchedulerStatus
}
