package models

import "fmt"

// Console is the platform a service is delivered on.
type Console string

const (
	ConsolePS4     Console = "PS4"
	ConsolePS5     Console = "PS5"
	ConsoleXboxOne Console = "XBOX ONE"
	ConsoleXboxXS  Console = "XBOX XS"
	ConsoleUnknown Console = "UNKNOWN"
)

// Service categories with fixed rendering rules.
const (
	CategoryGTAPackage  = "GTA 5 PACKAGE"
	CategoryBunker      = "FULL BUNKER UNLOCK"
	CategoryRank        = "Rank"
	CategoryLevel       = "LVL"
	CategoryCashAndCars = "CASH + CARS"
	CategoryOnlyCash    = "ONLY CASH"
	CategoryUnknown     = "UNKNOWN"
)

// Service is one logical line item derived from an order's product title.
// Quantity may be empty, a bare number, an M/K suffixed number or a range "a-b".
type Service struct {
	Service  string  `json:"service"`
	Console  Console `json:"console"`
	Quantity string  `json:"quantity"`
	Category string  `json:"category"`
}

// CorrelationID returns the id embedded in the tracking card for the service at
// index of total services extracted from orderID.
func CorrelationID(orderID string, index, total int) string {
	if total <= 1 {
		return orderID
	}
	return fmt.Sprintf("%s-%d", orderID, index+1)
}
