package models

// OrderRef is one row of a stage listing page.
type OrderRef struct {
	OrderID string `json:"order_id"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"` // As displayed on the listing
}

// Order is the flat record extracted from one fetch of an order detail page.
// A later fetch of the same OrderID supersedes it.
type Order struct {
	OrderID         string `json:"order_id"`
	PurchaseOrderID string `json:"purchase_order_id,omitempty"`
	ProductName     string `json:"product_name,omitempty"`
	Status          string `json:"status,omitempty"` // Status label as observed
	OrderDate       string `json:"order_date,omitempty"`

	// Transaction
	Quantity      string `json:"quantity,omitempty"`
	PricePerUnit  string `json:"price_per_unit,omitempty"`
	Amount        string `json:"amount,omitempty"`
	CommissionFee string `json:"commission_fee,omitempty"`
	ToBeEarned    string `json:"to_be_earned,omitempty"`
	ProductsID    string `json:"products_id,omitempty"`
	Type          string `json:"type,omitempty"`

	// Relationships
	BuyerName string `json:"buyer_name,omitempty"`
	BuyerURL  string `json:"buyer_url,omitempty"`
	ChatURL   string `json:"chat_url,omitempty"`

	// Game metadata
	Game        string `json:"game,omitempty"`
	Platform    string `json:"platform,omitempty"`
	ServiceType string `json:"service_type,omitempty"`

	// Services derived from ProductName, filled by the orchestrator
	Services []Service `json:"services,omitempty"`
}

// Valid reports whether the detail parser recovered the order id.
func (o *Order) Valid() bool {
	return o != nil && o.OrderID != ""
}
