package marketplace

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/models"
)

const (
	listingTableSelector = "table.sales-history__table"
	listingRowSelector   = "table.sales-history__table tbody tr"
)

var soldOrderPattern = regexp.MustCompile(`Sold order\s*№\s*(\d+)`)

// ParseListing extracts the order rows of a stage listing page.
// When any row carries a parseable date the result is sorted most recent first;
// rows with equal or unparseable dates keep their page order (unparseable last).
func ParseListing(html string, config common.MarketplaceConfig) ([]models.OrderRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	var refs []models.OrderRef
	seen := make(map[string]bool)

	doc.Find(listingRowSelector).Each(func(i int, row *goquery.Selection) {
		link := row.Find("a.sales-history__product-id").First()
		match := soldOrderPattern.FindStringSubmatch(cleanText(link.Text()))
		if match == nil {
			return
		}
		orderID := match[1]
		if seen[orderID] {
			return
		}
		seen[orderID] = true

		refs = append(refs, models.OrderRef{
			OrderID: orderID,
			URL:     rowURL(row, link, orderID, config),
			Date:    cleanText(row.Find("td:first-child").First().Text()),
		})
	})

	sortByDateDesc(refs)
	return refs, nil
}

func rowURL(row, link *goquery.Selection, orderID string, config common.MarketplaceConfig) string {
	if href, ok := row.Find(".clickable-row").First().Attr("data-url"); ok && strings.TrimSpace(href) != "" {
		return resolveURL(config.BaseURL, href)
	}
	if href, ok := row.Attr("data-url"); ok && strings.TrimSpace(href) != "" {
		return resolveURL(config.BaseURL, href)
	}
	if href, ok := link.Attr("href"); ok && strings.TrimSpace(href) != "" && !strings.HasPrefix(href, "#") {
		return resolveURL(config.BaseURL, href)
	}
	return config.DetailURL(orderID)
}

func sortByDateDesc(refs []models.OrderRef) {
	type dated struct {
		ref models.OrderRef
		ok  bool
		key int64
	}

	items := make([]dated, len(refs))
	anyDate := false
	for i, ref := range refs {
		t, ok := parseDate(ref.Date)
		items[i] = dated{ref: ref, ok: ok}
		if ok {
			items[i].key = t.Unix()
			anyDate = true
		}
	}
	if !anyDate {
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ok != items[j].ok {
			return items[i].ok
		}
		return items[i].key > items[j].key
	})

	for i := range items {
		refs[i] = items[i].ref
	}
}
