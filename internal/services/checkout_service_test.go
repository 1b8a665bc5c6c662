package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"glowcart/internal/catalog"
	"glowcart/internal/domain"
	applog "glowcart/internal/log"
	"glowcart/internal/pricing"
	"glowcart/internal/services"
	"glowcart/internal/store"
)

type checkoutFixture struct {
	carts    *services.CartService
	orders   *services.OrderService
	checkout *services.CheckoutService
}

func newCheckout(t *testing.T) checkoutFixture {
	kv := memStore(t)
	tbl := catalog.Default()
	carts := services.NewCartService(kv, tbl)
	orders := newOrders(kv, nil, true).WithIDs(seqIDs("CHK00001", "CHK00002"))
	return checkoutFixture{
		carts:    carts,
		orders:   orders,
		checkout: services.NewCheckoutService(tbl, carts, orders, pricing.DefaultRules()),
	}
}

var ada = domain.Customer{Name: "Ada", Email: "ada@example.com", Address: "1 Loop St", City: "Leeds", Postcode: "LS1 1AA"}

func TestQuoteRaw(t *testing.T) {
	f := newCheckout(t)
	q := f.checkout.QuoteRaw([]domain.RawLine{{ID: "cln-01", Qty: 2}, {ID: "ghost", Qty: 1}}, " demo10 ")
	require.Len(t, q.Lines, 1)
	assert.Equal(t, "DEMO10", q.Promo)
	assert.Equal(t, "24.00", q.Summary.Subtotal)
	assert.Equal(t, "2.40", q.Summary.Discount)
	assert.Equal(t, "3.95", q.Summary.Shipping)
	assert.True(t, q.Summary.HasPromo)

	empty := f.checkout.QuoteRaw(nil, "")
	assert.NotNil(t, empty.Lines)
	assert.Equal(t, "0.00", empty.Summary.Total)
}

func TestPlaceStoresOrderAndClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckout(t)
	c := f.carts.For("sid-1")
	require.NoError(t, c.Add(ctx, "ser-01"))
	require.NoError(t, c.Add(ctx, "ser-01"))

	r, err := f.checkout.Place(ctx, "sid-1", "DEMO10", ada)
	require.NoError(t, err)
	assert.Equal(t, "CHK00001", r.OrderID)
	// 44 - 4.40 = 39.60 base, free shipping, vat 7.92
	assert.Equal(t, "47.52", r.Summary.Total)

	lines, err := c.Lines(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	orders, err := f.orders.List(ctx, adminKey)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	var o domain.Order
	require.NoError(t, json.Unmarshal(orders[0], &o))
	assert.Equal(t, "CHK00001", o.ID)
	assert.Equal(t, "DEMO10", o.Promo)
	require.Len(t, o.Items, 1)
	assert.Equal(t, domain.OrderItem{ID: "ser-01", Name: "Vitamin C Serum 15%", Price: 22, Qty: 2, Img: o.Items[0].Img}, o.Items[0])
	assert.Equal(t, 47.52, o.Totals.Total)
	assert.Equal(t, 4.4, o.Totals.Discount)
	assert.Equal(t, ada, o.Customer)
}

// stuckCart refuses writes to cart keys; order keys pass through.
type stuckCart struct{ store.Store }

func (s stuckCart) Set(ctx context.Context, key, value string) error {
	if strings.HasPrefix(key, "cart:") {
		return errors.New("cart store unavailable")
	}
	return s.Store.Set(ctx, key, value)
}

func TestPlaceKeepsReceiptWhenCartClearFails(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := applog.L()
	applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(prev) })

	ctx := context.Background()
	kv := memStore(t)
	tbl := catalog.Default()
	require.NoError(t, services.NewCartService(kv, tbl).For("sid-9").Add(ctx, "cln-01"))

	carts := services.NewCartService(stuckCart{kv}, tbl)
	orders := newOrders(kv, nil, true).WithIDs(seqIDs("CHK00009"))
	checkout := services.NewCheckoutService(tbl, carts, orders, pricing.DefaultRules())

	r, err := checkout.Place(ctx, "sid-9", "", ada)
	require.NoError(t, err)
	assert.Equal(t, "CHK00009", r.OrderID)

	listed, err := orders.List(ctx, adminKey)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	fails := logs.FilterMessage("checkout.cart.clear.fail").All()
	require.Len(t, fails, 1)
	assert.Equal(t, "CHK00009", fails[0].ContextMap()["order_id"])
}

func TestPlaceEmptyCart(t *testing.T) {
	f := newCheckout(t)
	_, err := f.checkout.Place(context.Background(), "nobody", "", ada)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestPlaceInvalidCustomerKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckout(t)
	require.NoError(t, f.carts.For("sid-2").Add(ctx, "spf-01"))

	bad := ada
	bad.Email = "not-an-email"
	_, err := f.checkout.Place(ctx, "sid-2", "", bad)
	var ce *services.CustomerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"email"}, ce.Fields)

	lines, err := f.carts.For("sid-2").Lines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCatalogSearch(t *testing.T) {
	svc := services.NewCatalogService(catalog.Default())

	serums := svc.Search("serum", "")
	require.Len(t, serums, 2)
	assert.Equal(t, services.StockIn, serums[0].Availability)

	night := svc.Search("all", "NIGHT")
	require.Len(t, night, 1)
	assert.Equal(t, "mois-02", night[0].ID)
	assert.Equal(t, services.StockLow, night[0].Availability)

	assert.NotNil(t, svc.Search("spf", "zzz"))
	assert.Empty(t, svc.Search("spf", "zzz"))

	_, ok := svc.Get("ghost")
	assert.False(t, ok)
	assert.Equal(t, services.StockOut, services.Availability(0))
}
