// -----------------------------------------------------------------------
// Last Modified: Wednesday, 14th October 2026 4:15:00 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/interfaces"
)

// ChromeDriver drives a single Chrome tab through chromedp.
// The browser is started lazily on first use and reuses the configured
// user data directory so the marketplace session survives restarts.
type ChromeDriver struct {
	config     *common.BrowserConfig
	logger     arbor.ILogger
	navTimeout time.Duration

	mu              sync.Mutex
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	running         bool

	// launch starts Chrome and returns the tab context; replaced in tests
	launch func() (allocatorCancel context.CancelFunc, browserCtx context.Context, browserCancel context.CancelFunc, err error)
}

var _ interfaces.PageDriver = (*ChromeDriver)(nil)

// NewChromeDriver creates a driver; no browser process is started yet
func NewChromeDriver(config *common.BrowserConfig, logger arbor.ILogger) *ChromeDriver {
	d := &ChromeDriver{
		config:     config,
		logger:     logger,
		navTimeout: common.ParseDuration(config.NavigationTimeout, 60*time.Second),
	}
	d.launch = d.launchChrome
	return d
}

// Start launches Chrome and opens the tab. Calling Start on a running driver is a no-op.
func (d *ChromeDriver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startLocked()
}

// startLocked launches Chrome unless a live tab exists. A tab whose context
// was cancelled underneath us (process exit, window closed) is torn down and
// relaunched.
func (d *ChromeDriver) startLocked() error {
	if d.running {
		if d.browserCtx.Err() == nil {
			return nil
		}
		d.logger.Warn().Err(d.browserCtx.Err()).Msg("Browser is gone, relaunching")
		d.resetLocked()
	}

	allocatorCancel, browserCtx, browserCancel, err := d.launch()
	if err != nil {
		return err
	}

	d.allocatorCancel = allocatorCancel
	d.browserCtx = browserCtx
	d.browserCancel = browserCancel
	d.running = true

	d.logger.Info().
		Bool("headless", d.config.Headless).
		Str("user_data_dir", d.config.UserDataDir).
		Msg("Browser started")
	return nil
}

// resetLocked releases the current tab and allocator
func (d *ChromeDriver) resetLocked() {
	if d.browserCancel != nil {
		d.browserCancel()
	}
	if d.allocatorCancel != nil {
		d.allocatorCancel()
	}
	d.browserCancel = nil
	d.allocatorCancel = nil
	d.browserCtx = nil
	d.running = false
}

func (d *ChromeDriver) launchChrome() (context.CancelFunc, context.Context, context.CancelFunc, error) {
	if d.config.UserDataDir != "" {
		if err := os.MkdirAll(d.config.UserDataDir, 0755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create user data directory: %w", err)
		}
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), d.buildAllocatorOptions()...)

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(s string, i ...interface{}) {
			d.logger.Debug().Msgf("chromedp: "+s, i...)
		}),
	)

	// Test browser startup
	testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer testCancel()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, nil, nil, fmt.Errorf("browser failed startup test: %w", err)
	}

	return allocatorCancel, browserCtx, browserCancel, nil
}

// buildAllocatorOptions creates Chrome allocator options
func (d *ChromeDriver) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	width, height := d.config.WindowWidth, d.config.WindowHeight
	if width <= 0 || height <= 0 {
		width, height = 1920, 1080
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.WindowSize(width, height),
	}

	if d.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.config.UserAgent))
	}

	// User Data Directory - keeps the marketplace login
	if d.config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(d.config.UserDataDir))
	}

	if d.config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(d.config.ChromePath))
	}

	if d.config.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	return opts
}

// Close shuts the tab and the browser process down
func (d *ChromeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.resetLocked()

	d.logger.Info().Msg("Browser closed")
	return nil
}

// IsRunning reports whether the browser process is up
func (d *ChromeDriver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running && d.browserCtx.Err() == nil
}

// run executes actions on the tab bounded by timeout and by the caller's ctx
func (d *ChromeDriver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	d.mu.Lock()
	if err := d.startLocked(); err != nil {
		d.mu.Unlock()
		return err
	}
	browserCtx := d.browserCtx
	d.mu.Unlock()

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the body to be ready
func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug().Str("url", url).Msg("Navigating")

	err := d.run(ctx, d.navTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, classifyError(ctx, err))
	}
	return nil
}

// WaitForSelector waits for selector to become visible. A timeout is not an error.
func (d *ChromeDriver) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	err := d.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		d.logger.Debug().Str("selector", selector).Dur("timeout", timeout).Msg("Selector not found")
		return false, nil
	}
	return false, classifyError(ctx, err)
}

// Evaluate runs script in the page, awaiting a returned promise
func (d *ChromeDriver) Evaluate(ctx context.Context, script string, res interface{}) error {
	err := d.run(ctx, d.navTimeout, chromedp.Evaluate(script, res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	return classifyError(ctx, err)
}

// HTML returns the rendered document's outer HTML
func (d *ChromeDriver) HTML(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, d.navTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", classifyError(ctx, err)
	}
	return html, nil
}

// CurrentURL returns the tab's location
func (d *ChromeDriver) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := d.run(ctx, d.navTimeout, chromedp.Location(&location)); err != nil {
		return "", classifyError(ctx, err)
	}
	return location, nil
}

// Messages Chrome reports when the document under an evaluation went away
var contextLostMarkers = []string{
	"execution context was destroyed",
	"cannot find context with specified id",
	"inspected target navigated or closed",
	"cannot find default execution context",
	"node with given id does not belong to the document",
	"could not find node with given id",
}

// classifyError maps Chrome failures onto the page driver error taxonomy.
// Our own timeout firing while the caller is still waiting means the page
// never produced what was asked for.
func classifyError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", interfaces.ErrContentNotFound, err)
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range contextLostMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", interfaces.ErrContextLost, err)
		}
	}
	return err
}
