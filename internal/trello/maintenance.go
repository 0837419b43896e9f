package trello

import (
	"context"
	"fmt"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
	"github.com/ternarybob/ordersync/internal/services/extraction"
)

// TestConnection fetches the configured board.
func (r *Reconciler) TestConnection(ctx context.Context) (*models.Board, error) {
	if !r.client.Configured() {
		return nil, interfaces.ErrBoardNotConfigured
	}

	board, err := r.client.GetBoard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch board: %w", err)
	}

	r.logger.Info().
		Str("board_id", board.ID).
		Str("board_name", board.Name).
		Msg("Trello connection OK")

	return board, nil
}

// RefreshCardTitles re-renders the title of every card in the configured list
// from its own description and re-applies its status label.
func (r *Reconciler) RefreshCardTitles(ctx context.Context) (*RefreshResult, error) {
	if !r.client.Configured() {
		return nil, interfaces.ErrBoardNotConfigured
	}

	cards, err := r.client.ListListCards(ctx, r.client.ListID())
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	result := &RefreshResult{Total: len(cards), Errors: []string{}}
	wrote := false

	for _, card := range cards {
		parsed, ok := ParseOrderFromDescription(card.Desc)
		if !ok || parsed.Order.ProductName == "" {
			r.logger.Debug().Str("card_id", card.ID).Str("name", card.Name).Msg("Card description has no order, skipping")
			result.Skipped++
			continue
		}

		title := extraction.RenderTitle(pickService(parsed))
		if card.Name == title {
			result.Skipped++
			continue
		}

		if wrote {
			if err := sleepCtx(ctx, r.writeDelay); err != nil {
				return result, err
			}
		}
		wrote = true

		if _, err := r.client.UpdateCard(ctx, card.ID, title, card.Desc); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", card.ID, err))
			continue
		}

		if parsed.Order.Status != "" {
			if _, err := r.correctLabels(ctx, card.ID, parsed.Order.Status); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", card.ID, err))
			}
		}

		r.logger.Info().
			Str("card_id", card.ID).
			Str("old_title", card.Name).
			Str("new_title", title).
			Msg("Card title refreshed")
		result.Updated++
	}

	return result, nil
}

// pickService returns the extracted service named in the description, else the first
func pickService(parsed *ParsedCard) models.Service {
	services := extraction.ExtractServices(parsed.Order.ProductName)
	for _, s := range services {
		if s.Service == parsed.ServiceLabel {
			return s
		}
	}
	return services[0]
}
