package extraction

import (
	"fmt"

	"github.com/ternarybob/ordersync/internal/models"
)

// RenderTitle renders the tracking card title for a service
func RenderTitle(s models.Service) string {
	if s.Console == models.ConsoleUnknown || s.Console == "" {
		return s.Service
	}

	switch s.Category {
	case models.CategoryRank, models.CategoryLevel:
		return fmt.Sprintf("[%s] %s %s", s.Console, s.Quantity, s.Category)
	case models.CategoryBunker, models.CategoryGTAPackage:
		return fmt.Sprintf("[%s] %s", s.Console, s.Category)
	}

	if s.Quantity != "" {
		return fmt.Sprintf("[%s] %s %s", s.Console, s.Quantity, s.Category)
	}
	return fmt.Sprintf("[%s] %s", s.Console, s.Category)
}
