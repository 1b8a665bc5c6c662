package handlers

import (
	"glowcart/internal/catalog"
	"glowcart/internal/config"
	"glowcart/internal/events"
	"glowcart/internal/pricing"
	"glowcart/internal/services"
	"glowcart/internal/store"
	"glowcart/internal/validate"
)

type Deps struct {
	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler

	// Orders is exposed for the background sweeper.
	Orders *services.OrderService
}

func NewDeps(kv store.Store, pub events.Publisher, cfg config.Config) *Deps {
	tbl := catalog.Default()

	catalogSvc := services.NewCatalogService(tbl)
	cartSvc := services.NewCartService(kv, tbl)
	orderSvc := services.NewOrderService(kv, pub,
		services.AdminAuth{Key: cfg.AdminKey, Hash: cfg.AdminKeyBcrypt},
		validate.Options{Strict: cfg.OrdersStrict})
	checkoutSvc := services.NewCheckoutService(tbl, cartSvc, orderSvc, pricing.DefaultRules())

	return &Deps{
		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc, Cart: cartSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		Orders:          orderSvc,
	}
}
