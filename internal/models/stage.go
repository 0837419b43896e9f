package models

import (
	"fmt"
	"strings"
)

// Stage is one position in the marketplace's order lifecycle.
// Each stage maps to one listing page on the marketplace.
type Stage string

const (
	StageNewOrder   Stage = "new_order"
	StagePreparing  Stage = "preparing"
	StageDelivering Stage = "delivering"
	StageDelivered  Stage = "delivered"
	StageCompleted  Stage = "completed"
	StageCancelled  Stage = "cancelled"
)

// AllStages lists the lifecycle in walk order.
var AllStages = []Stage{
	StageNewOrder,
	StagePreparing,
	StageDelivering,
	StageDelivered,
	StageCompleted,
	StageCancelled,
}

// SyncStages are the read-only stages whose orders are reconciled against the board.
var SyncStages = []Stage{
	StageDelivering,
	StageDelivered,
	StageCompleted,
	StageCancelled,
}

// ParseStage accepts the canonical stage name as well as the display forms
// ("New Order", "new-order", "PREPARING").
func ParseStage(s string) (Stage, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for _, stage := range AllStages {
		if string(stage) == normalized {
			return stage, nil
		}
	}
	if normalized == "new" {
		return StageNewOrder, nil
	}
	return "", fmt.Errorf("unknown stage: %q", s)
}

// Advanceable reports whether the transition driver acts on orders in this stage.
func (s Stage) Advanceable() bool {
	return s == StageNewOrder || s == StagePreparing
}

// Rank orders stages along the lifecycle. The terminal stages share a rank.
func (s Stage) Rank() int {
	switch s {
	case StageNewOrder:
		return 0
	case StagePreparing:
		return 1
	case StageDelivering:
		return 2
	case StageDelivered, StageCompleted, StageCancelled:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether s is other or any later stage.
func (s Stage) AtLeast(other Stage) bool {
	return s.Rank() >= other.Rank() && s.Rank() >= 0
}

// StageFromStatus maps a status label as displayed on an order page to a stage.
func StageFromStatus(status string) (Stage, bool) {
	upper := strings.ToUpper(strings.TrimSpace(status))
	switch {
	case upper == "":
		return "", false
	case strings.Contains(upper, "CANCEL"):
		return StageCancelled, true
	case strings.Contains(upper, "COMPLETED"):
		return StageCompleted, true
	case strings.Contains(upper, "DELIVERED"):
		return StageDelivered, true
	case strings.Contains(upper, "DELIVERING"):
		return StageDelivering, true
	case strings.Contains(upper, "PREPARING"):
		return StagePreparing, true
	case strings.Contains(upper, "NEW"):
		return StageNewOrder, true
	}
	return "", false
}
