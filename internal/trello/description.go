package trello

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ternarybob/ordersync/internal/models"
)

// Description line labels. The correlation id is read back from these on every sync.
const (
	labelSource          = "Источник"
	labelOrderID         = "ID заказа"
	labelService         = "Услуга"
	labelOriginalOrderID = "Оригинальный ID заказа"
	labelPurchaseOrderID = "Purchase Order ID"
	labelStatus          = "Статус"
	labelOrderDate       = "Дата заказа"
	labelProductName     = "Название"
	labelProductsID      = "Products ID"
	labelType            = "Тип"
	labelQuantity        = "Количество"
	labelPricePerUnit    = "Цена за единицу"
	labelAmount          = "Сумма"
	labelCommission      = "Комиссия"
	labelToBeEarned      = "To be earned"
	labelBuyer           = "Покупатель"
	labelGame            = "Игра"
	labelPlatform        = "Платформа"
	labelServiceType     = "Тип услуги"
	labelChat            = "Чат"

	sourceName = "G2G"
)

// BuildDescription renders the card description for one service of an order.
// Empty order fields are left out.
func BuildDescription(order models.Order, service models.Service, correlationID string) string {
	var b strings.Builder

	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	line(labelSource, sourceName)
	line(labelOrderID, correlationID)
	line(labelService, service.Service)
	if correlationID != order.OrderID {
		line(labelOriginalOrderID, order.OrderID)
	}
	line(labelPurchaseOrderID, order.PurchaseOrderID)
	line(labelStatus, order.Status)
	line(labelOrderDate, order.OrderDate)

	if order.ProductName != "" {
		b.WriteString("\n")
		line(labelProductName, order.ProductName)
	}
	line(labelProductsID, order.ProductsID)
	line(labelType, order.Type)
	line(labelQuantity, order.Quantity)
	line(labelPricePerUnit, order.PricePerUnit)
	line(labelAmount, order.Amount)
	line(labelCommission, order.CommissionFee)
	line(labelToBeEarned, order.ToBeEarned)

	if order.BuyerName != "" {
		b.WriteString("\n")
		buyer := order.BuyerName
		if order.BuyerURL != "" {
			buyer += " (" + order.BuyerURL + ")"
		}
		line(labelBuyer, buyer)
	}

	if order.Game != "" || order.Platform != "" || order.ServiceType != "" {
		b.WriteString("\n")
		line(labelGame, order.Game)
		line(labelPlatform, order.Platform)
		line(labelServiceType, order.ServiceType)
	}

	if order.ChatURL != "" {
		b.WriteString("\n")
		line(labelChat, order.ChatURL)
	}

	return strings.TrimRight(b.String(), "\n")
}

// HasCorrelationID reports whether desc carries "ID заказа: <id>" for exactly this id.
// "ID заказа: 123" does not match a card for "123-1" and vice versa.
func HasCorrelationID(desc, correlationID string) bool {
	return containsField(desc, labelOrderID, correlationID)
}

// HasOriginalOrderID reports whether desc was built for a service of orderID
func HasOriginalOrderID(desc, orderID string) bool {
	return containsField(desc, labelOriginalOrderID, orderID)
}

func containsField(desc, label, value string) bool {
	if value == "" {
		return false
	}
	needle := label + ": " + value
	for offset := 0; ; {
		i := strings.Index(desc[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)

		// "Оригинальный ID заказа:" contains "ID заказа:"; only a line start counts
		leftOK := start == 0 || desc[start-1] == '\n'
		rightOK := end == len(desc) || !isIDContinuation(desc[end])
		if leftOK && rightOK {
			return true
		}
		offset = start + 1
	}
}

func isIDContinuation(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-'
}

var descLinePattern = regexp.MustCompile(`(?m)^([^:\n]+):[ \t]*(.*)$`)

// ParsedCard is what can be recovered from a card description.
type ParsedCard struct {
	CorrelationID string
	ServiceLabel  string
	Order         models.Order
}

// ParseOrderFromDescription recovers the order fields from a description built by
// BuildDescription. The second return is false when no order id is present.
func ParseOrderFromDescription(desc string) (*ParsedCard, bool) {
	fields := make(map[string]string)
	for _, m := range descLinePattern.FindAllStringSubmatch(desc, -1) {
		label := strings.TrimSpace(m[1])
		if _, exists := fields[label]; !exists {
			fields[label] = strings.TrimSpace(m[2])
		}
	}

	correlationID := fields[labelOrderID]
	if correlationID == "" {
		return nil, false
	}

	orderID := fields[labelOriginalOrderID]
	if orderID == "" {
		orderID = correlationID
	}

	parsed := &ParsedCard{
		CorrelationID: correlationID,
		ServiceLabel:  fields[labelService],
		Order: models.Order{
			OrderID:         orderID,
			PurchaseOrderID: fields[labelPurchaseOrderID],
			ProductName:     fields[labelProductName],
			Status:          fields[labelStatus],
			OrderDate:       fields[labelOrderDate],
			ProductsID:      fields[labelProductsID],
			Type:            fields[labelType],
			Quantity:        fields[labelQuantity],
			PricePerUnit:    fields[labelPricePerUnit],
			Amount:          fields[labelAmount],
			CommissionFee:   fields[labelCommission],
			ToBeEarned:      fields[labelToBeEarned],
			Game:            fields[labelGame],
			Platform:        fields[labelPlatform],
			ServiceType:     fields[labelServiceType],
			ChatURL:         fields[labelChat],
		},
	}

	if buyer := fields[labelBuyer]; buyer != "" {
		name, buyerURL := buyer, ""
		if i := strings.LastIndex(buyer, " ("); i > 0 && strings.HasSuffix(buyer, ")") {
			name, buyerURL = buyer[:i], buyer[i+2:len(buyer)-1]
		}
		parsed.Order.BuyerName = name
		parsed.Order.BuyerURL = buyerURL
	}

	return parsed, true
}
