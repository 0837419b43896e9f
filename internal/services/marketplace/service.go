// Package marketplace reads the seller order pages and drives the early
// lifecycle transitions through a PageDriver.
package marketplace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

// Service is the list reader, detail parser and transition driver over one page session.
// Calls must not overlap.
type Service struct {
	driver interfaces.PageDriver
	config common.MarketplaceConfig
	logger arbor.ILogger
	retry  RetryPolicy

	listingWait  time.Duration
	renderDelay  time.Duration
	pollAttempts int
	pollInterval time.Duration
	confirmDelay time.Duration
}

// NewService creates a marketplace service
func NewService(driver interfaces.PageDriver, config common.MarketplaceConfig, logger arbor.ILogger) *Service {
	pollAttempts := config.PollAttempts
	if pollAttempts <= 0 {
		pollAttempts = 10
	}
	retryAttempts := config.RetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = 3
	}

	return &Service{
		driver: driver,
		config: config,
		logger: logger,
		retry: RetryPolicy{
			MaxAttempts: retryAttempts,
			Delay:       common.ParseDuration(config.RetryDelay, 2*time.Second),
			Logger:      logger,
		},
		listingWait:  common.ParseDuration(config.ListingWait, 10*time.Second),
		renderDelay:  common.ParseDuration(config.RenderDelay, 2*time.Second),
		pollAttempts: pollAttempts,
		pollInterval: common.ParseDuration(config.PollInterval, time.Second),
		confirmDelay: common.ParseDuration(config.ConfirmDelay, 1500*time.Millisecond),
	}
}

// ReadListing returns the orders shown on a stage's listing page.
// A missing listing table means the stage is empty.
func (s *Service) ReadListing(ctx context.Context, stage models.Stage) ([]models.OrderRef, error) {
	listingURL := s.config.ListingURL(string(stage))
	if listingURL == "" {
		return nil, fmt.Errorf("no listing page configured for stage %s", stage)
	}

	var refs []models.OrderRef
	prepare := func(ctx context.Context) error {
		return s.driver.Navigate(ctx, listingURL)
	}
	step := func(ctx context.Context) error {
		refs = nil
		if err := sleepCtx(ctx, s.renderDelay); err != nil {
			return err
		}

		found, err := s.driver.WaitForSelector(ctx, listingTableSelector, s.listingWait)
		if err != nil {
			return err
		}
		if !found {
			s.logger.Debug().Str("stage", string(stage)).Msg("Listing table not present, stage is empty")
			return nil
		}

		html, err := s.driver.HTML(ctx)
		if err != nil {
			return err
		}
		refs, err = ParseListing(html, s.config)
		return err
	}

	if _, err := s.retry.Execute(ctx, "listing "+string(stage), prepare, step); err != nil {
		return nil, fmt.Errorf("failed to read %s listing: %w", stage, err)
	}

	s.logger.Info().
		Str("stage", string(stage)).
		Int("orders", len(refs)).
		Msg("Read stage listing")

	return refs, nil
}

// FetchOrder loads the canonical order page and parses it.
func (s *Service) FetchOrder(ctx context.Context, orderID string) (*models.Order, error) {
	detailURL := s.config.DetailURL(orderID)

	var order *models.Order
	prepare := func(ctx context.Context) error {
		return s.driver.Navigate(ctx, detailURL)
	}
	step := func(ctx context.Context) error {
		if err := sleepCtx(ctx, s.renderDelay); err != nil {
			return err
		}
		// Parsing still runs without the marker; validity is decided by the parser
		if _, err := s.driver.WaitForSelector(ctx, orderNumberSelector, s.listingWait); err != nil {
			return err
		}

		html, err := s.driver.HTML(ctx)
		if err != nil {
			return err
		}
		order, err = ParseOrderDetail(html, s.config.BaseURL)
		return err
	}

	if _, err := s.retry.Execute(ctx, "order "+orderID, prepare, step); err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}

	s.logger.Debug().
		Str("order_id", order.OrderID).
		Str("status", order.Status).
		Str("product", order.ProductName).
		Msg("Fetched order")

	return order, nil
}

// OpenLogin navigates the session to the marketplace login page for a manual sign-in
func (s *Service) OpenLogin(ctx context.Context) (string, error) {
	loginURL := s.config.LoginURL()
	if err := s.driver.Navigate(ctx, loginURL); err != nil {
		return "", fmt.Errorf("failed to open login page: %w", err)
	}
	return loginURL, nil
}

// IsLoggedIn loads a listing page and reports whether the marketplace kept it
// or redirected to the login page.
func (s *Service) IsLoggedIn(ctx context.Context) (bool, error) {
	if err := s.driver.Navigate(ctx, s.config.ListingURL(string(models.StageDelivering))); err != nil {
		return false, fmt.Errorf("failed to load listing: %w", err)
	}
	current, err := s.driver.CurrentURL(ctx)
	if err != nil {
		return false, err
	}
	loginPath := s.config.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return !strings.Contains(current, loginPath), nil
}
