// Package extraction decomposes free-text product titles into service line items.
//
// Rules run in a fixed priority order and are independent: one title may match
// several rules, each contributing one Service. Later rules rely on earlier ones
// having claimed certain keywords (the cars rule stands down when the title also
// mentions CASH, because the cash rule owns "CASH + CARS").
package extraction

import (
	"strings"

	"github.com/ternarybob/ordersync/internal/models"
)

// rule inspects the upper-cased title and returns at most one service
type rule struct {
	name  string
	apply func(in ruleInput) (models.Service, bool)
}

// ruleInput carries the title plus what earlier rules produced
type ruleInput struct {
	upper   string
	console models.Console
	matched map[string]bool
}

// rules is evaluated top to bottom; the order is part of the contract.
var rules = []rule{
	{name: "gta_package", apply: gtaPackageRule},
	{name: "outfits", apply: outfitsRule},
	{name: "cars", apply: carsRule},
	{name: "bunker", apply: bunkerRule},
	{name: "rank", apply: rankRule},
	{name: "level", apply: levelRule},
	{name: "cash", apply: cashRule},
}

// ExtractServices returns the ordered services described by productName.
// It always returns at least one service: when no rule fires the raw title
// becomes the service with category UNKNOWN.
func ExtractServices(productName string) []models.Service {
	in := ruleInput{
		upper:   strings.ToUpper(productName),
		matched: make(map[string]bool, len(rules)),
	}
	in.console = DetectConsole(in.upper)

	services := make([]models.Service, 0, 2)
	for _, r := range rules {
		if svc, ok := r.apply(in); ok {
			in.matched[r.name] = true
			services = append(services, svc)
		}
	}

	if len(services) == 0 {
		services = append(services, models.Service{
			Service:  productName,
			Console:  in.console,
			Quantity: "",
			Category: models.CategoryUnknown,
		})
	}

	return services
}

// DetectConsole determines the platform by ordered substring checks on an upper-cased title
func DetectConsole(upper string) models.Console {
	switch {
	case strings.Contains(upper, "XBOX XS") || strings.Contains(upper, "XBOX SERIES"):
		return models.ConsoleXboxXS
	case strings.Contains(upper, "XBOX ONE"):
		return models.ConsoleXboxOne
	case strings.Contains(upper, "PS5") || strings.Contains(upper, "PLAYSTATION 5"):
		return models.ConsolePS5
	case strings.Contains(upper, "PS4") || strings.Contains(upper, "PLAYSTATION 4"):
		return models.ConsolePS4
	default:
		return models.ConsoleUnknown
	}
}
