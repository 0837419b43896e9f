package models

import "time"

// ReconcileAction is what the reconciler did for one service.
type ReconcileAction string

const (
	ActionCreated ReconcileAction = "created"
	ActionUpdated ReconcileAction = "updated"
	ActionSkipped ReconcileAction = "skipped" // Creation policy refused a new card
	ActionFailed  ReconcileAction = "failed"
)

// ReconcileOutcome is the per-service result of one reconciliation.
type ReconcileOutcome struct {
	OrderID       string          `json:"order_id"`
	CorrelationID string          `json:"correlation_id"`
	Title         string          `json:"title"`
	CardID        string          `json:"card_id,omitempty"`
	Action        ReconcileAction `json:"action"`
	Labeled       bool            `json:"labeled"`
	Error         string          `json:"error,omitempty"`
}

// Success reports created-or-updated-and-labeled.
func (o ReconcileOutcome) Success() bool {
	return (o.Action == ActionCreated || o.Action == ActionUpdated) && o.Labeled
}

// SyncResult is returned by a full synchronization pass.
type SyncResult struct {
	RunID           string             `json:"run_id"`
	OrdersProcessed int                `json:"orders_processed"`
	OrdersAdvanced  int                `json:"orders_advanced"`
	Created         int                `json:"cards_created"`
	Updated         int                `json:"cards_updated"`
	Skipped         int                `json:"cards_skipped"`
	Errors          []string           `json:"errors"`
	Outcomes        []ReconcileOutcome `json:"outcomes,omitempty"`
	Orders          []Order            `json:"orders"`
}

// Record folds one reconcile outcome into the counters.
func (r *SyncResult) Record(outcome ReconcileOutcome) {
	switch outcome.Action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	case ActionSkipped:
		r.Skipped++
	}
	if outcome.Error != "" {
		r.Errors = append(r.Errors, outcome.CorrelationID+": "+outcome.Error)
	}
	r.Outcomes = append(r.Outcomes, outcome)
}

// Run triggers
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// SyncRun is the persisted summary of one synchronization pass.
type SyncRun struct {
	ID              string    `json:"id"`
	Trigger         string    `json:"trigger"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	OrdersProcessed int       `json:"orders_processed"`
	OrdersAdvanced  int       `json:"orders_advanced"`
	Created         int       `json:"cards_created"`
	Updated         int       `json:"cards_updated"`
	Skipped         int       `json:"cards_skipped"`
	Errors          []string  `json:"errors,omitempty"`
	Aborted         string    `json:"aborted,omitempty"` // Set when the pass failed a precondition
}

// Duration of the run; zero while running.
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
