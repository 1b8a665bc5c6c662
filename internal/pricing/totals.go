// Package pricing computes checkout totals from normalized cart lines.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"glowcart/internal/domain"
)

// Rules are the store's pricing constants.
type Rules struct {
	PromoCode        string
	PromoRate        decimal.Decimal
	FreeShippingFrom decimal.Decimal
	ShippingFee      decimal.Decimal
	VATRate          decimal.Decimal
}

// DefaultRules: DEMO10 for 10% off, free shipping from £30, £3.95 otherwise, 20% VAT.
func DefaultRules() Rules {
	return Rules{
		PromoCode:        "DEMO10",
		PromoRate:        decimal.RequireFromString("0.10"),
		FreeShippingFrom: decimal.NewFromInt(30),
		ShippingFee:      decimal.RequireFromString("3.95"),
		VATRate:          decimal.RequireFromString("0.20"),
	}
}

// PromoApplies reports whether code matches the promo, ignoring case and
// surrounding space.
func (r Rules) PromoApplies(code string) bool {
	code = strings.TrimSpace(code)
	return r.PromoCode != "" && code != "" && strings.EqualFold(code, r.PromoCode)
}

// Compute returns exact totals; nothing is rounded here. An empty cart yields
// all-zero totals.
func (r Rules) Compute(lines []domain.CartLine, promo string) domain.Totals {
	if len(lines) == 0 {
		return domain.Totals{}
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	discount := decimal.Zero
	if r.PromoApplies(promo) {
		discount = subtotal.Mul(r.PromoRate)
	}
	base := decimal.Max(decimal.Zero, subtotal.Sub(discount))
	shipping := r.ShippingFee
	if base.GreaterThanOrEqual(r.FreeShippingFrom) {
		shipping = decimal.Zero
	}
	vat := base.Mul(r.VATRate)
	return domain.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		VAT:      vat,
		Total:    base.Add(shipping).Add(vat),
	}
}

// Compute uses DefaultRules.
func Compute(lines []domain.CartLine, promo string) domain.Totals {
	return DefaultRules().Compute(lines, promo)
}

// Money formats an amount for display: two decimals, pound sign.
func Money(d decimal.Decimal) string {
	return "£" + d.StringFixed(2)
}

// Summary is the display form of Totals.
type Summary struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Shipping string `json:"shipping"`
	VAT      string `json:"vat"`
	Total    string `json:"total"`
	HasPromo bool   `json:"hasPromo"`
}

func Summarize(t domain.Totals) Summary {
	return Summary{
		Subtotal: t.Subtotal.StringFixed(2),
		Discount: t.Discount.StringFixed(2),
		Shipping: t.Shipping.StringFixed(2),
		VAT:      t.VAT.StringFixed(2),
		Total:    t.Total.StringFixed(2),
		HasPromo: t.Discount.IsPositive(),
	}
}
