package trello

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ordersync/internal/models"
)

func fullOrder() models.Order {
	return models.Order{
		OrderID:         "555",
		PurchaseOrderID: "9001",
		ProductName:     "[PS5] Rank 120 + 100M Cash",
		Status:          "Delivering",
		OrderDate:       "Oct 15, 2026 10:30 AM",
		Quantity:        "1",
		PricePerUnit:    "12.50 USD",
		Amount:          "12.50 USD",
		CommissionFee:   "1.25 USD",
		ToBeEarned:      "11.25 USD",
		ProductsID:      "G1700000123",
		Type:            "Boosting",
		BuyerName:       "john_doe",
		BuyerURL:        "https://market.test/buyer/john",
		ChatURL:         "https://market.test/chat/#/order/555",
		Game:            "GTA 5 Online",
		Platform:        "PS5",
		ServiceType:     "Money",
	}
}

func TestBuildDescription(t *testing.T) {
	service := models.Service{Service: "Rank 120", Console: models.ConsolePS5, Quantity: "120", Category: models.CategoryRank}

	desc := BuildDescription(fullOrder(), service, "555-1")

	want := strings.Join([]string{
		"Источник: G2G",
		"ID заказа: 555-1",
		"Услуга: Rank 120",
		"Оригинальный ID заказа: 555",
		"Purchase Order ID: 9001",
		"Статус: Delivering",
		"Дата заказа: Oct 15, 2026 10:30 AM",
		"",
		"Название: [PS5] Rank 120 + 100M Cash",
		"Products ID: G1700000123",
		"Тип: Boosting",
		"Количество: 1",
		"Цена за единицу: 12.50 USD",
		"Сумма: 12.50 USD",
		"Комиссия: 1.25 USD",
		"To be earned: 11.25 USD",
		"",
		"Покупатель: john_doe (https://market.test/buyer/john)",
		"",
		"Игра: GTA 5 Online",
		"Платформа: PS5",
		"Тип услуги: Money",
		"",
		"Чат: https://market.test/chat/#/order/555",
	}, "\n")
	assert.Equal(t, want, desc)
}

func TestBuildDescription_SingleServiceOmitsOriginalID(t *testing.T) {
	desc := BuildDescription(models.Order{OrderID: "9", Status: "Delivering"}, models.Service{Service: "X"}, "9")

	assert.Equal(t, "Источник: G2G\nID заказа: 9\nУслуга: X\nСтатус: Delivering", desc)
}

func TestParseOrderFromDescription(t *testing.T) {
	order := fullOrder()
	desc := BuildDescription(order, models.Service{Service: "ONLY CASH"}, "555-2")

	parsed, ok := ParseOrderFromDescription(desc)
	require.True(t, ok)
	assert.Equal(t, "555-2", parsed.CorrelationID)
	assert.Equal(t, "ONLY CASH", parsed.ServiceLabel)
	assert.Equal(t, order, parsed.Order)

	_, ok = ParseOrderFromDescription("just a note")
	assert.False(t, ok)
}

func TestHasCorrelationID(t *testing.T) {
	tests := []struct {
		desc string
		id   string
		want bool
	}{
		{"ID заказа: 123", "123", true},
		{"Источник: G2G\nID заказа: 123\nСтатус: Delivering", "123", true},
		{"ID заказа: 1234", "123", false},
		{"ID заказа: 123-1", "123", false},
		{"ID заказа: 123-1\n", "123-1", true},
		{"ID заказа: 123-12", "123-1", false},
		{"Оригинальный ID заказа: 123", "123", false},
		{"ID заказа: 99\nОригинальный ID заказа: 123\nID заказа: 123", "123", true},
		{"ID заказа: 123", "", false},
	}

	for _, tt := range tests {
		if got := HasCorrelationID(tt.desc, tt.id); got != tt.want {
			t.Errorf("HasCorrelationID(%q, %q) = %v, want %v", tt.desc, tt.id, got, tt.want)
		}
	}
}
