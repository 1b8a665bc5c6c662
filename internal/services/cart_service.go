package services

import (
	"glowcart/internal/cart"
	"glowcart/internal/catalog"
	"glowcart/internal/store"
)

// CartService hands out per-session carts persisted in the shared store.
type CartService struct {
	kv  store.Store
	tbl *catalog.Table
}

func NewCartService(kv store.Store, tbl *catalog.Table) *CartService {
	return &CartService{kv: kv, tbl: tbl}
}

// For returns the cart bound to a session id.
func (s *CartService) For(sessionID string) *cart.Cart {
	return cart.New(cart.NewKVStorage(s.kv, sessionID), s.tbl)
}
