// Package browsertest provides a scripted PageDriver for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/ordersync/internal/interfaces"
)

// ClickFunc handles an Evaluate call. It may mutate the driver's pages and
// returns the value decoded into the caller's result.
type ClickFunc func(d *FakeDriver, script string) (interface{}, error)

// FakeDriver serves static HTML per URL and records every call.
type FakeDriver struct {
	mu sync.Mutex

	Pages   map[string]string
	OnClick ClickFunc

	// Transient failures injected before the next successful call
	ContextLostOnEvaluate int
	ContextLostOnHTML     int
	FailNavigate          map[string]error

	// Redirects maps a requested URL to the URL the page ends up on
	Redirects map[string]string

	current     string
	Navigations []string
	Scripts     []string
}

var _ interfaces.PageDriver = (*FakeDriver)(nil)

// New creates a driver serving pages
func New(pages map[string]string) *FakeDriver {
	if pages == nil {
		pages = make(map[string]string)
	}
	return &FakeDriver{
		Pages:        pages,
		FailNavigate: make(map[string]error),
		Redirects:    make(map[string]string),
	}
}

// SetPage replaces the HTML served at url
func (d *FakeDriver) SetPage(url, html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Pages[url] = html
}

// Current returns the URL last navigated to
func (d *FakeDriver) Current() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// NavigationCount returns how many times url was loaded
func (d *FakeDriver) NavigationCount(url string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, u := range d.Navigations {
		if u == url {
			n++
		}
	}
	return n
}

func (d *FakeDriver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Navigations = append(d.Navigations, url)
	if err, ok := d.FailNavigate[url]; ok {
		return err
	}
	if target, ok := d.Redirects[url]; ok {
		url = target
	}
	d.current = url
	return nil
}

func (d *FakeDriver) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	d.mu.Lock()
	html, ok := d.Pages[d.current]
	d.mu.Unlock()
	if !ok {
		return false, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, err
	}
	return doc.Find(selector).Length() > 0, nil
}

func (d *FakeDriver) Evaluate(ctx context.Context, script string, res interface{}) error {
	d.mu.Lock()
	d.Scripts = append(d.Scripts, script)
	if d.ContextLostOnEvaluate > 0 {
		d.ContextLostOnEvaluate--
		d.mu.Unlock()
		return fmt.Errorf("%w: execution context was destroyed", interfaces.ErrContextLost)
	}
	onClick := d.OnClick
	d.mu.Unlock()

	if onClick == nil {
		return assign(res, false)
	}
	value, err := onClick(d, script)
	if err != nil {
		return err
	}
	return assign(res, value)
}

func (d *FakeDriver) HTML(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ContextLostOnHTML > 0 {
		d.ContextLostOnHTML--
		return "", fmt.Errorf("%w: cannot find context with specified id", interfaces.ErrContextLost)
	}
	html, ok := d.Pages[d.current]
	if !ok {
		return "<html><body></body></html>", nil
	}
	return html, nil
}

func (d *FakeDriver) CurrentURL(ctx context.Context) (string, error) {
	return d.Current(), nil
}

func assign(res interface{}, value interface{}) error {
	switch out := res.(type) {
	case nil:
		return nil
	case *bool:
		b, _ := value.(bool)
		*out = b
	case *string:
		s, _ := value.(string)
		*out = s
	case *interface{}:
		*out = value
	default:
		return fmt.Errorf("browsertest: unsupported result type %T", res)
	}
	return nil
}
