// Package catalog holds the static inventory table: the source of truth for
// names, prices and stock ceilings. It is never mutated at runtime.
package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"glowcart/internal/domain"
)

const imgBase = "https://images.unsplash.com/"

var defaultProducts = []domain.Product{
	{ID: "cln-01", Name: "Daily Gel Cleanser", Price: decimal.NewFromInt(12), Stock: 25,
		Img:   imgBase + "photo-1603656349530-b34457511a1f?auto=format&fit=crop&w=1400&q=80",
		Blurb: "Low-foam gel that lifts sunscreen and grime without stripping.",
		Tags:  []string{"cleanser", "daily"}},
	{ID: "mois-01", Name: "Hydrate+ Moisturizer", Price: decimal.NewFromInt(16), Stock: 30,
		Img:   imgBase + "photo-1606813907291-76a6dfb00d9b?auto=format&fit=crop&w=1400&q=80",
		Blurb: "Lightweight ceramide cream for morning and night.",
		Tags:  []string{"moisturizer", "daily"}},
	{ID: "spf-01", Name: "SPF 50 Daily Defense", Price: decimal.NewFromInt(18), Stock: 40,
		Img:   imgBase + "photo-1589985270826-4b7bba7083e3?auto=format&fit=crop&w=1400&q=80",
		Blurb: "Broad-spectrum fluid with no white cast.",
		Tags:  []string{"spf", "daily"}},
	{ID: "ser-01", Name: "Vitamin C Serum 15%", Price: decimal.NewFromInt(22), Stock: 20,
		Img:   imgBase + "photo-1604076913837-52ab5629fba9?auto=format&fit=crop&w=1400&q=80",
		Blurb: "Brightening L-ascorbic acid serum with ferulic acid.",
		Tags:  []string{"serum", "brightening"}},
	{ID: "ser-02", Name: "Niacinamide 10% Serum", Price: decimal.NewFromInt(19), Stock: 20,
		Img:   imgBase + "photo-1542838132-92c53300491e?auto=format&fit=crop&w=1400&q=80",
		Blurb: "Balances oil and refines the look of pores.",
		Tags:  []string{"serum"}},
	{ID: "mois-02", Name: "Night Repair Cream", Price: decimal.NewFromInt(20), Stock: 15,
		Img:   imgBase + "photo-1601134467661-3d775b999c8b?auto=format&fit=crop&w=1400&q=80",
		Blurb: "Rich overnight cream with peptides and squalane.",
		Tags:  []string{"moisturizer", "night"}},
}

// Table is an immutable product lookup that preserves display order.
type Table struct {
	order []domain.Product
	byID  map[string]domain.Product
}

// Default returns the storefront's inventory table.
func Default() *Table { return New(defaultProducts) }

func New(products []domain.Product) *Table {
	t := &Table{byID: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		p.Tags = slices.Clone(p.Tags)
		t.order = append(t.order, p)
		t.byID[p.ID] = p
	}
	return t
}

func (t *Table) Lookup(id string) (domain.Product, bool) {
	p, ok := t.byID[id]
	p.Tags = slices.Clone(p.Tags)
	return p, ok
}

// All returns a copy of every product in display order.
func (t *Table) All() []domain.Product {
	out := make([]domain.Product, len(t.order))
	for i, p := range t.order {
		p.Tags = slices.Clone(p.Tags)
		out[i] = p
	}
	return out
}

// Find filters by tag ("" or "all" means any) and by a lower-cased query
// matched against name and tags.
func (t *Table) Find(tag, q string) []domain.Product {
	tag = strings.ToLower(strings.TrimSpace(tag))
	q = strings.ToLower(strings.TrimSpace(q))
	out := []domain.Product{}
	for _, p := range t.order {
		if tag != "" && tag != "all" && !slices.Contains(p.Tags, tag) {
			continue
		}
		if q != "" {
			hay := strings.ToLower(p.Name + " " + strings.Join(p.Tags, " "))
			if !strings.Contains(hay, q) {
				continue
			}
		}
		p.Tags = slices.Clone(p.Tags)
		out = append(out, p)
	}
	return out
}

// Tags lists the distinct tags in first-seen order, for filter chips.
func (t *Table) Tags() []string {
	var out []string
	for _, p := range t.order {
		for _, tg := range p.Tags {
			if !slices.Contains(out, tg) {
				out = append(out, tg)
			}
		}
	}
	return out
}
