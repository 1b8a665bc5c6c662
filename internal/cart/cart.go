// Package cart holds the shopping cart: normalization against the inventory
// table and a session object whose persistence is injected.
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"glowcart/internal/catalog"
	"glowcart/internal/domain"
)

// Storage loads and saves the raw lines of one cart.
type Storage interface {
	Load(ctx context.Context) ([]domain.RawLine, error)
	Save(ctx context.Context, lines []domain.RawLine) error
}

// Cart is one shopper's cart. Every mutation is a load-modify-save against
// its Storage; nothing is cached between calls.
type Cart struct {
	storage Storage
	tbl     *catalog.Table
}

func New(storage Storage, tbl *catalog.Table) *Cart {
	return &Cart{storage: storage, tbl: tbl}
}

// Lines returns the normalized contents.
func (c *Cart) Lines(ctx context.Context) ([]domain.CartLine, error) {
	raw, err := c.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return Normalize(c.tbl, raw), nil
}

// Add puts one more unit of id in the cart. Unknown ids are ignored.
func (c *Cart) Add(ctx context.Context, id string) error {
	if _, ok := c.tbl.Lookup(id); !ok {
		return nil
	}
	return c.update(ctx, func(lines []domain.RawLine) []domain.RawLine {
		for i := range lines {
			if lines[i].ID == id {
				lines[i].Qty = coerceQty(lines[i].Qty) + 1
				return lines
			}
		}
		return append(lines, domain.RawLine{ID: id, Qty: 1})
	})
}

// SetQty sets the quantity for id; anything below 1 becomes 1.
func (c *Cart) SetQty(ctx context.Context, id string, qty int) error {
	qty = max(1, qty)
	return c.update(ctx, func(lines []domain.RawLine) []domain.RawLine {
		for i := range lines {
			if lines[i].ID == id {
				lines[i].Qty = qty
			}
		}
		return lines
	})
}

func (c *Cart) Remove(ctx context.Context, id string) error {
	return c.update(ctx, func(lines []domain.RawLine) []domain.RawLine {
		kept := lines[:0]
		for _, l := range lines {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		return kept
	})
}

func (c *Cart) Clear(ctx context.Context) error {
	return c.storage.Save(ctx, []domain.RawLine{})
}

// Summary is what the cart drawer shows.
type Summary struct {
	Lines    []domain.CartLine `json:"items"`
	Count    int               `json:"count"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

func (c *Cart) Summary(ctx context.Context) (Summary, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Lines: lines, Subtotal: decimal.Zero}
	for _, l := range lines {
		s.Count += l.Qty
		s.Subtotal = s.Subtotal.Add(l.LineTotal())
	}
	return s, nil
}

// Count is the number of units in the cart.
func (c *Cart) Count(ctx context.Context) (int, error) {
	s, err := c.Summary(ctx)
	return s.Count, err
}

func (c *Cart) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	s, err := c.Summary(ctx)
	return s.Subtotal, err
}

func (c *Cart) update(ctx context.Context, fn func([]domain.RawLine) []domain.RawLine) error {
	raw, err := c.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if err := c.storage.Save(ctx, fn(raw)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
