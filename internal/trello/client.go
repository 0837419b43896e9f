// -----------------------------------------------------------------------
// Last Modified: Tuesday, 13th October 2026 11:20:00 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Trello REST API.
	DefaultBaseURL = "https://api.trello.com/1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 8
)

// Client is a Trello REST client scoped to one board and one list.
type Client struct {
	baseURL string
	config  common.TrelloConfig
	http    *resty.Client
	logger  arbor.ILogger
	limiter *rate.Limiter
}

var _ interfaces.BoardClient = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// NewClient creates a Trello client from the [trello] config section.
func NewClient(config common.TrelloConfig, opts ...ClientOption) *Client {
	baseURL := DefaultBaseURL
	if config.BaseURL != "" {
		baseURL = strings.TrimRight(config.BaseURL, "/")
	}
	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRateLimit
	}

	c := &Client{
		baseURL: baseURL,
		config:  config,
		http: resty.New().
			SetTimeout(common.ParseDuration(config.Timeout, DefaultTimeout)).
			SetHeader("Accept", "application/json"),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured returns true when key, token, board and list are all set
func (c *Client) Configured() bool {
	return c.config.IsConfigured()
}

func (c *Client) BoardID() string { return c.config.BoardID }

func (c *Client) ListID() string { return c.config.ListID }

// do executes one API call. Reads authenticate through the query string,
// writes through the JSON body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body map[string]interface{}, result interface{}) error {
	if !c.Configured() {
		return interfaces.ErrBoardNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req := c.http.R().SetContext(ctx)
	if query == nil {
		query = url.Values{}
	}

	if method == http.MethodGet {
		query.Set("key", c.config.APIKey)
		query.Set("token", c.config.APIToken)
	} else {
		if body == nil {
			body = map[string]interface{}{}
		}
		body["key"] = c.config.APIKey
		body["token"] = c.config.APIToken
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	req.SetQueryParamsFromValues(query)

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("endpoint", path).
			Msg("Trello API request")
	}

	resp, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.IsError() {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(resp.String()),
			Endpoint:   path,
		}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// GetBoard retrieves the configured board.
func (c *Client) GetBoard(ctx context.Context) (*models.Board, error) {
	var board models.Board
	if err := c.do(ctx, http.MethodGet, "/boards/"+c.config.BoardID, nil, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// ListBoardCards returns every open card on the board, across all lists.
func (c *Client) ListBoardCards(ctx context.Context) ([]models.Card, error) {
	query := url.Values{}
	query.Set("fields", "id,name,desc,idList")

	var cards []models.Card
	if err := c.do(ctx, http.MethodGet, "/boards/"+c.config.BoardID+"/cards", query, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// ListListCards returns the cards of one list.
func (c *Client) ListListCards(ctx context.Context, listID string) ([]models.Card, error) {
	query := url.Values{}
	query.Set("fields", "id,name,desc,idList,idLabels")

	var cards []models.Card
	if err := c.do(ctx, http.MethodGet, "/lists/"+listID+"/cards", query, nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCardLabelIDs returns the label ids currently attached to a card.
func (c *Client) GetCardLabelIDs(ctx context.Context, cardID string) ([]string, error) {
	query := url.Values{}
	query.Set("fields", "idLabels")

	var card models.Card
	if err := c.do(ctx, http.MethodGet, "/cards/"+cardID, query, nil, &card); err != nil {
		return nil, err
	}
	return card.IDLabels, nil
}

// CreateCard creates a card in listID.
func (c *Client) CreateCard(ctx context.Context, name, desc, listID string) (*models.Card, error) {
	body := map[string]interface{}{
		"name":   name,
		"desc":   desc,
		"idList": listID,
	}

	var card models.Card
	if err := c.do(ctx, http.MethodPost, "/cards", nil, body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard replaces a card's name and description.
func (c *Client) UpdateCard(ctx context.Context, cardID, name, desc string) (*models.Card, error) {
	body := map[string]interface{}{
		"name": name,
		"desc": desc,
	}

	var card models.Card
	if err := c.do(ctx, http.MethodPut, "/cards/"+cardID, nil, body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// SetCardLabels replaces the full label set of a card.
func (c *Client) SetCardLabels(ctx context.Context, cardID string, labelIDs []string) error {
	body := map[string]interface{}{
		"value": strings.Join(labelIDs, ","),
	}
	return c.do(ctx, http.MethodPut, "/cards/"+cardID+"/idLabels", nil, body, nil)
}

// ListLabels returns the board's labels.
func (c *Client) ListLabels(ctx context.Context) ([]models.Label, error) {
	var labels []models.Label
	if err := c.do(ctx, http.MethodGet, "/boards/"+c.config.BoardID+"/labels", nil, nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// CreateLabel creates a board label. An empty color creates a colorless label.
func (c *Client) CreateLabel(ctx context.Context, name, color string) (*models.Label, error) {
	body := map[string]interface{}{
		"name":    name,
		"idBoard": c.config.BoardID,
	}
	if color != "" {
		body["color"] = color
	}

	var label models.Label
	if err := c.do(ctx, http.MethodPost, "/labels", nil, body, &label); err != nil {
		return nil, err
	}
	return &label, nil
}
