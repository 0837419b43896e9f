// -----------------------------------------------------------------------
// Last Modified: Wednesday, 14th October 2026 4:05:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

// Transition outcomes
const (
	OutcomeAdvanced        = "advanced"
	OutcomeAlreadyAdvanced = "already_advanced"
	OutcomeControlNotFound = "control_not_found"
	OutcomeUnconfirmed     = "unconfirmed"
)

// TransitionResult reports what the driver did for one order
type TransitionResult struct {
	OrderID   string       `json:"order_id"`
	From      models.Stage `json:"from"`
	Observed  models.Stage `json:"observed,omitempty"`
	Reached   models.Stage `json:"reached,omitempty"`
	Activated bool         `json:"activated"`
	Attempts  int          `json:"attempts"`
	Outcome   string       `json:"outcome"`
}

// clickIntent describes a control by its visible text or action attributes
type clickIntent struct {
	name      string
	selectors string
	texts     []string
	attrs     []string
}

var (
	viewDeliveryDetails = clickIntent{
		name:      "view_delivery_details",
		selectors: "a, button",
		texts:     []string{"view delivery details", "delivery details"},
		attrs:     []string{"view_delivery", "delivery_detail"},
	}
	startTrading = clickIntent{
		name:      "start_trading",
		selectors: "a, button",
		texts:     []string{"start trading", "start trade"},
		attrs:     []string{"start_trading", "start_trade"},
	}
	deliverFallback = clickIntent{
		name:      "deliver",
		selectors: `a.list-action__btn-default, button, a[onclick*="deliver"]`,
		texts:     []string{"start delivery", "confirm deliver"},
		attrs:     []string{"deliver"},
	}
	confirmDelivery = clickIntent{
		name:      "confirm_delivery",
		selectors: `a.list-action__btn-default, button, a[onclick*="deliver"], a[onclick*="confirm"]`,
		texts:     []string{"confirm"},
		attrs:     []string{"confirm_deliver"},
	}
)

// script returns a page function that clicks the first matching control and reports whether it did
func (c clickIntent) script() string {
	selectors, _ := json.Marshal(c.selectors)
	texts, _ := json.Marshal(c.texts)
	attrs, _ := json.Marshal(c.attrs)

	return fmt.Sprintf(`(() => {
	const texts = %s;
	const attrs = %s;
	const nodes = Array.from(document.querySelectorAll(%s));
	for (const el of nodes) {
		const text = (el.innerText || el.textContent || '').trim().toLowerCase();
		const action = ((el.getAttribute('onclick') || '') + ' ' + (el.getAttribute('data-action') || '')).toLowerCase();
		if (texts.some(t => text.includes(t)) || attrs.some(a => action.includes(a))) {
			el.scrollIntoView({block: 'center'});
			el.click();
			return true;
		}
	}
	return false;
})()`, texts, attrs, selectors)
}

// AdvanceOrder drives one order out of a NewOrder or Preparing listing.
// Missing controls and unconfirmed transitions are reported in the result, not as errors.
// An error means the retry budget was exhausted or the page failed in some other way.
func (s *Service) AdvanceOrder(ctx context.Context, ref models.OrderRef, from models.Stage) (*TransitionResult, error) {
	if !from.Advanceable() {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrStageNotAdvanceable, from)
	}

	orderURL := ref.URL
	if orderURL == "" {
		orderURL = s.config.DetailURL(ref.OrderID)
	}

	result := &TransitionResult{OrderID: ref.OrderID, From: from}
	prepare := func(ctx context.Context) error {
		return s.driver.Navigate(ctx, orderURL)
	}

	var step func(context.Context) error
	switch from {
	case models.StageNewOrder:
		step = func(ctx context.Context) error {
			if s.guard(ctx, result) {
				return nil
			}
			clicked, err := s.click(ctx, viewDeliveryDetails)
			if err != nil {
				return err
			}
			result.Activated = clicked
			return nil
		}
	case models.StagePreparing:
		step = func(ctx context.Context) error {
			if s.guard(ctx, result) {
				return nil
			}
			clicked, err := s.click(ctx, startTrading)
			if err != nil {
				return err
			}
			if !clicked {
				if clicked, err = s.click(ctx, deliverFallback); err != nil {
					return err
				}
			}
			result.Activated = clicked
			return nil
		}
	}

	attempts, err := s.retry.Execute(ctx, "advance "+string(from)+" "+ref.OrderID, prepare, step)
	result.Attempts = attempts
	if err != nil {
		return result, err
	}

	if result.Outcome == OutcomeAlreadyAdvanced {
		s.logger.Info().
			Str("order_id", ref.OrderID).
			Str("observed", string(result.Observed)).
			Msg("Order already advanced, skipping")
		return result, nil
	}

	if !result.Activated {
		result.Outcome = OutcomeControlNotFound
		s.logger.Debug().
			Str("order_id", ref.OrderID).
			Str("stage", string(from)).
			Msg("No transition control on order page")
		return result, nil
	}

	if from == models.StageNewOrder {
		s.pollForStage(ctx, orderURL, models.StagePreparing, result)
		return result, nil
	}

	result.Outcome = OutcomeAdvanced
	s.confirm(ctx, ref.OrderID)
	return result, nil
}

// guard records the displayed stage and reports whether the order is already past result.From
func (s *Service) guard(ctx context.Context, result *TransitionResult) bool {
	result.Observed = ""
	result.Outcome = ""

	stage, ok := s.observeStage(ctx)
	if !ok {
		return false
	}
	result.Observed = stage
	if stage.Rank() > result.From.Rank() {
		result.Reached = stage
		result.Outcome = OutcomeAlreadyAdvanced
		return true
	}
	return false
}

// observeStage reads the stage label from the current page. Context loss is
// treated as an unknown stage.
func (s *Service) observeStage(ctx context.Context) (models.Stage, bool) {
	html, err := s.driver.HTML(ctx)
	if err != nil {
		return "", false
	}
	status, err := ParseStatus(html)
	if err != nil {
		return "", false
	}
	return models.StageFromStatus(status)
}

func (s *Service) click(ctx context.Context, intent clickIntent) (bool, error) {
	var clicked bool
	if err := s.driver.Evaluate(ctx, intent.script(), &clicked); err != nil {
		return false, fmt.Errorf("click %s: %w", intent.name, err)
	}
	if clicked {
		s.logger.Debug().Str("control", intent.name).Msg("Activated control")
	}
	return clicked, nil
}

// pollForStage waits for the displayed stage to reach target within the poll budget.
func (s *Service) pollForStage(ctx context.Context, orderURL string, target models.Stage, result *TransitionResult) {
	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		if err := sleepCtx(ctx, s.pollInterval); err != nil {
			break
		}

		stage, ok := s.observeStage(ctx)
		if ok && stage.AtLeast(target) {
			result.Reached = stage
			result.Outcome = OutcomeAdvanced
			s.logger.Info().
				Str("order_id", result.OrderID).
				Str("reached", string(stage)).
				Int("polls", attempt).
				Msg("Order advanced")
			return
		}

		if !ok {
			// The click may have redirected; reload the order page before the next poll
			if err := s.driver.Navigate(ctx, orderURL); err != nil && !errors.Is(err, interfaces.ErrContextLost) {
				s.logger.Debug().Str("order_id", result.OrderID).Err(err).Msg("Reload during poll failed")
			}
		}
	}

	result.Outcome = OutcomeUnconfirmed
	s.logger.Warn().
		Str("order_id", result.OrderID).
		Str("target", string(target)).
		Int("polls", s.pollAttempts).
		Msg("Stage change not confirmed within poll budget")
}

// confirm clicks a follow-up confirmation control when the page shows one
func (s *Service) confirm(ctx context.Context, orderID string) {
	if err := sleepCtx(ctx, s.confirmDelay); err != nil {
		return
	}
	clicked, err := s.click(ctx, confirmDelivery)
	if err != nil {
		s.logger.Debug().Str("order_id", orderID).Err(err).Msg("Confirmation click failed")
		return
	}
	s.logger.Info().
		Str("order_id", orderID).
		Bool("confirmed", clicked).
		Msg("Delivery started")
}
