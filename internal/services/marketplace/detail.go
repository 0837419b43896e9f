package marketplace

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/ordersync/internal/interfaces"
	"github.com/ternarybob/ordersync/internal/models"
)

const (
	orderNumberSelector = ".trade__order__top-num"
	statusSelector      = ".trade__status"
)

var (
	detailSoldPattern     = regexp.MustCompile(`Sold order\s*№\s*(\d+)`)
	detailPurchasePattern = regexp.MustCompile(`Purchase order\s*№\s*(\d+)`)
	productsIDPattern     = regexp.MustCompile(`Products ID\s*:\s*([^\s)]+)`)
)

// ParseOrderDetail extracts an Order from an order page snapshot. Absent fields
// are left empty. A page without an order number is reported as ErrContentNotFound.
func ParseOrderDetail(html, baseURL string) (*models.Order, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse order HTML: %w", err)
	}

	order := &models.Order{}

	doc.Find(orderNumberSelector).Each(func(i int, s *goquery.Selection) {
		text := cleanText(s.Text())
		if m := detailSoldPattern.FindStringSubmatch(text); m != nil && order.OrderID == "" {
			order.OrderID = m[1]
		}
		if m := detailPurchasePattern.FindStringSubmatch(text); m != nil && order.PurchaseOrderID == "" {
			order.PurchaseOrderID = m[1]
		}
	})

	if !order.Valid() {
		return nil, fmt.Errorf("order number missing from page: %w", interfaces.ErrContentNotFound)
	}

	order.Status = firstText(doc, statusSelector)
	order.OrderDate = firstText(doc, ".trade__date")
	order.ProductName = firstText(doc, ".purchase-title")

	doc.Find("th").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if m := productsIDPattern.FindStringSubmatch(cleanText(s.Text())); m != nil {
			order.ProductsID = m[1]
			return false
		}
		return true
	})

	order.Type = firstText(doc, `td[data-th="Type"] .tooltip__content`)
	if order.Type == "" {
		order.Type = firstText(doc, `td[data-th="Type"]`)
	}
	order.Quantity = firstText(doc, `td[data-th="QTY."]`)
	order.PricePerUnit = firstText(doc, `td[data-th="PRICE/UNIT"]`)
	order.Amount = firstText(doc, `td[data-th="Amount"]`)
	order.CommissionFee = firstText(doc, `td[data-th="Comission fee"]`)
	order.ToBeEarned = firstText(doc, `td[data-th="To be earned"]`)

	buyer := doc.Find(".seller__title-orders a").First()
	order.BuyerName = cleanText(buyer.Text())
	if href, ok := buyer.Attr("href"); ok {
		order.BuyerURL = resolveURL(baseURL, href)
	}

	doc.Find(".game-info__list-item").Each(func(i int, s *goquery.Selection) {
		title := strings.ToLower(cleanText(s.Find(".game-info__title").Text()))
		value := cleanText(s.Find(".game-info__info").Text())
		switch {
		case strings.HasPrefix(title, "game"):
			order.Game = value
		case strings.HasPrefix(title, "platform"):
			order.Platform = value
		case strings.HasPrefix(title, "service type"):
			order.ServiceType = value
		}
	})

	if href, ok := doc.Find(`a[href*="/chat/#/order/"]`).First().Attr("href"); ok {
		order.ChatURL = resolveURL(baseURL, href)
	}

	return order, nil
}

// ParseStatus returns the status label shown on an order page, or "" when absent
func ParseStatus(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse order HTML: %w", err)
	}
	return firstText(doc, statusSelector), nil
}

func firstText(doc *goquery.Document, selector string) string {
	return cleanText(doc.Find(selector).First().Text())
}
