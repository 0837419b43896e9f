// -----------------------------------------------------------------------
// Last Modified: Monday, 12th October 2026 9:40:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrContentNotFound marks an expected absence (no table, no button, wait timed out).
	// Callers treat it as an empty result.
	ErrContentNotFound = errors.New("content not found")

	// ErrContextLost marks a page context destroyed mid-operation, typically by a
	// client-side redirect after a click. Recoverable by re-navigating.
	ErrContextLost = errors.New("page context lost")
)

// PageDriver is one logical browser page. Implementations are not safe for
// concurrent use: callers issue page operations strictly sequentially.
type PageDriver interface {
	// Navigate loads url and waits for the document to be ready
	Navigate(ctx context.Context, url string) error

	// WaitForSelector waits up to timeout for selector to be visible.
	// Returns false (and no error) when the wait times out.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (bool, error)

	// Evaluate runs script against the live DOM and decodes its result into res (may be nil)
	Evaluate(ctx context.Context, script string, res interface{}) error

	// HTML returns a snapshot of the rendered document
	HTML(ctx context.Context) (string, error)

	// CurrentURL returns the page's location
	CurrentURL(ctx context.Context) (string, error)
}
