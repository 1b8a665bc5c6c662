package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	Img   string          `json:"img"`
	Blurb string          `json:"blurb"`
	Tags  []string        `json:"tags"`
}

// RawLine is a cart line as held by the client; Qty is whatever JSON gave us.
type RawLine struct {
	ID  string `json:"id"`
	Qty any    `json:"qty,omitempty"`
}

// CartLine is a normalized line: canonical name/price/img copied from the product.
type CartLine struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Img   string          `json:"img"`
	Qty   int             `json:"qty"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	VAT      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
}
