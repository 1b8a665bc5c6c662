package domain

// OrderItem is an item as submitted with a creation request.
type OrderItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
	Img   string  `json:"img,omitempty"`
}

// OrderTotals are the client-computed totals stored verbatim with an order.
type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount,omitempty"`
	Shipping float64 `json:"shipping"`
	VAT      float64 `json:"vat"`
	Total    float64 `json:"total"`
}

// Order is the typed view of a persisted record. Records may carry extra
// top-level keys from the request body; those are kept in storage but not here.
type Order struct {
	ID        string      `json:"id,omitempty"`
	Items     []OrderItem `json:"items"`
	Totals    OrderTotals `json:"totals"`
	Customer  Customer    `json:"customer"`
	Promo     string      `json:"promo,omitempty"`
	CreatedAt string      `json:"createdAt,omitempty"`
}
