package interfaces

import "context"

// OrderLedger is the durable set of order ids already advanced past NewOrder.
type OrderLedger interface {
	// Load reads the persisted set, replacing the in-memory copy. A missing file is an empty set.
	Load(ctx context.Context) error
	Contains(orderID string) bool
	// Add records orderID and persists the whole set before returning
	Add(ctx context.Context, orderID string) error
	Clear(ctx context.Context) error
	List() []string
}
