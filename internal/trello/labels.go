package trello

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

// StatusLabelName maps an observed order status to its status label.
// The first matching rule wins.
func StatusLabelName(status string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(status))
	switch {
	case upper == "":
		return "", false
	case strings.Contains(upper, "DELIVERING"):
		return models.LabelDelivering, true
	case strings.Contains(upper, "CANCEL REQUESTED"), strings.Contains(upper, "CANCEL REQUEST"):
		return models.LabelCancelRequested, true
	case strings.Contains(upper, "DELIVERED"):
		return models.LabelDelivered, true
	case strings.Contains(upper, "COMPLETED"):
		return models.LabelCompleted, true
	case strings.Contains(upper, "CANCELLED"), strings.Contains(upper, "CANCELED"):
		return models.LabelCancelled, true
	}
	return "", false
}

// IsStatusLabel reports whether name belongs to the closed status label set
func IsStatusLabel(name string) bool {
	_, ok := statusLabelColor(name)
	return ok
}

func statusLabelColor(name string) (string, bool) {
	for _, l := range models.StatusLabels {
		if strings.EqualFold(strings.TrimSpace(name), l.Name) {
			return l.Color, true
		}
	}
	return "", false
}

// correctLabels makes the card carry exactly the status label for status,
// leaving its other labels untouched. Returns false when the status is unmapped.
func (r *Reconciler) correctLabels(ctx context.Context, cardID, status string) (bool, error) {
	target, ok := StatusLabelName(status)
	if !ok {
		r.logger.Warn().
			Str("card_id", cardID).
			Str("status", status).
			Msg("Status has no label mapping, labels left unchanged")
		return false, nil
	}

	labels, err := r.client.ListLabels(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list labels: %w", err)
	}

	byID := make(map[string]models.Label, len(labels))
	targetID := ""
	for _, l := range labels {
		byID[l.ID] = l
		if targetID == "" && strings.EqualFold(strings.TrimSpace(l.Name), target) {
			targetID = l.ID
		}
	}

	if targetID == "" {
		color, _ := statusLabelColor(target)
		created, err := r.client.CreateLabel(ctx, target, color)
		if err != nil {
			return false, fmt.Errorf("failed to create label %s: %w", target, err)
		}
		targetID = created.ID
		r.logger.Info().Str("label", target).Str("color", color).Msg("Created missing status label")
	}

	current, err := r.client.GetCardLabelIDs(ctx, cardID)
	if err != nil {
		return false, fmt.Errorf("failed to read card labels: %w", err)
	}

	desired, changed := replaceStatusLabels(current, byID, targetID)
	if !changed {
		return true, nil
	}

	if err := r.client.SetCardLabels(ctx, cardID, desired); err != nil {
		return false, fmt.Errorf("failed to set card labels: %w", err)
	}

	r.logger.Info().
		Str("card_id", cardID).
		Str("label", target).
		Strs("labels", desired).
		Msg("Corrected card status label")

	return true, nil
}

// replaceStatusLabels keeps the non-status labels of current in order and appends targetID.
// changed is false when current already carries exactly one status label and it is targetID.
func replaceStatusLabels(current []string, byID map[string]models.Label, targetID string) ([]string, bool) {
	desired := make([]string, 0, len(current)+1)
	statusCount := 0
	hasTarget := false

	for _, id := range current {
		if id == targetID {
			statusCount++
			hasTarget = true
			continue
		}
		if l, ok := byID[id]; ok && IsStatusLabel(l.Name) {
			statusCount++
			continue
		}
		desired = append(desired, id)
	}
	desired = append(desired, targetID)

	return desired, !(hasTarget && statusCount == 1)
}

// EnsureStatusLabels creates any status label the board does not have yet.
func (r *Reconciler) EnsureStatusLabels(ctx context.Context) (*LabelSetupResult, error) {
	if !r.client.Configured() {
		return nil, interfaces.ErrBoardNotConfigured
	}

	labels, err := r.client.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	result := &LabelSetupResult{Created: []string{}, Existing: []string{}}
	for _, want := range models.StatusLabels {
		found := false
		for _, l := range labels {
			if strings.EqualFold(strings.TrimSpace(l.Name), want.Name) {
				found = true
				break
			}
		}
		if found {
			result.Existing = append(result.Existing, want.Name)
			continue
		}

		if _, err := r.client.CreateLabel(ctx, want.Name, want.Color); err != nil {
			return result, fmt.Errorf("failed to create label %s: %w", want.Name, err)
		}
		result.Created = append(result.Created, want.Name)
	}

	r.logger.Info().
		Strs("created", result.Created).
		Strs("existing", result.Existing).
		Msg("Status labels ensured")

	return result, nil
}
