package trello

import "fmt"

// APIError represents a non-2xx response from the Trello API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Trello API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RefreshResult reports a bulk title refresh.
type RefreshResult struct {
	Total   int      `json:"total"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// LabelSetupResult reports which status labels were created or already present.
type LabelSetupResult struct {
	Created  []string `json:"created"`
	Existing []string `json:"existing"`
}
