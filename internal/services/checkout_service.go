package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"glowcart/internal/cart"
	"glowcart/internal/catalog"
	"glowcart/internal/domain"
	applog "glowcart/internal/log"
	"glowcart/internal/pricing"
	"glowcart/internal/validate"
)

var ErrEmptyCart = errors.New("cart is empty")

// CustomerError lists checkout form fields that failed validation.
type CustomerError struct {
	Fields []string
}

func (e *CustomerError) Error() string {
	return "invalid customer fields: " + strings.Join(e.Fields, ", ")
}

// Quote is a priced cart.
type Quote struct {
	Lines   []domain.CartLine `json:"items"`
	Totals  domain.Totals     `json:"-"`
	Summary pricing.Summary   `json:"totals"`
	Promo   string            `json:"promo,omitempty"`
}

// Receipt is what the shopper sees after placing an order.
type Receipt struct {
	OrderID string
	Quote
}

type CheckoutService struct {
	tbl    *catalog.Table
	carts  *CartService
	orders *OrderService
	rules  pricing.Rules
}

func NewCheckoutService(tbl *catalog.Table, carts *CartService, orders *OrderService, rules pricing.Rules) *CheckoutService {
	return &CheckoutService{tbl: tbl, carts: carts, orders: orders, rules: rules}
}

// Quote prices lines that are already normalized.
func (s *CheckoutService) Quote(lines []domain.CartLine, promo string) Quote {
	promo = strings.TrimSpace(promo)
	t := s.rules.Compute(lines, promo)
	if lines == nil {
		lines = []domain.CartLine{}
	}
	q := Quote{Lines: lines, Totals: t, Summary: pricing.Summarize(t)}
	if s.rules.PromoApplies(promo) {
		q.Promo = strings.ToUpper(promo)
	}
	return q
}

// QuoteRaw normalizes client-held lines and prices them.
func (s *CheckoutService) QuoteRaw(raw []domain.RawLine, promo string) Quote {
	return s.Quote(cart.Normalize(s.tbl, raw), promo)
}

// QuoteSession prices the session's stored cart.
func (s *CheckoutService) QuoteSession(ctx context.Context, sid, promo string) (Quote, error) {
	lines, err := s.carts.For(sid).Lines(ctx)
	if err != nil {
		return Quote{}, err
	}
	return s.Quote(lines, promo), nil
}

// Place turns the session cart into an order through the order intake, then
// empties the cart.
func (s *CheckoutService) Place(ctx context.Context, sid, promo string, c domain.Customer) (Receipt, error) {
	sc := s.carts.For(sid)
	lines, err := sc.Lines(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if len(lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	c, bad := validate.Customer(c)
	if len(bad) > 0 {
		return Receipt{}, &CustomerError{Fields: bad}
	}

	q := s.Quote(lines, promo)
	body, err := json.Marshal(orderPayload(q, c))
	if err != nil {
		return Receipt{}, fmt.Errorf("encode order: %w", err)
	}
	id, err := s.orders.Create(ctx, body)
	if err != nil {
		return Receipt{}, err
	}
	// the order exists; a cart left behind must not hide the receipt
	if err := sc.Clear(ctx); err != nil {
		applog.L().Error("checkout.cart.clear.fail", zap.String("order_id", id), zap.Error(err))
	}
	return Receipt{OrderID: id, Quote: q}, nil
}

func orderPayload(q Quote, c domain.Customer) domain.Order {
	items := make([]domain.OrderItem, len(q.Lines))
	for i, l := range q.Lines {
		items[i] = domain.OrderItem{ID: l.ID, Name: l.Name, Price: l.Price.InexactFloat64(), Qty: l.Qty, Img: l.Img}
	}
	return domain.Order{
		Items: items,
		Totals: domain.OrderTotals{
			Subtotal: money(q.Totals.Subtotal),
			Discount: money(q.Totals.Discount),
			Shipping: money(q.Totals.Shipping),
			VAT:      money(q.Totals.VAT),
			Total:    money(q.Totals.Total),
		},
		Customer: c,
		Promo:    q.Promo,
	}
}

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }
