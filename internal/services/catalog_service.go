package services

import (
	"glowcart/internal/catalog"
	"glowcart/internal/domain"
)

const (
	StockIn  = "IN_STOCK"
	StockLow = "LOW_STOCK"
	StockOut = "OUT_OF_STOCK"
)

// ProductView is a product plus its stock badge.
type ProductView struct {
	domain.Product
	Availability string `json:"availability"`
}

type CatalogService struct {
	tbl *catalog.Table
}

func NewCatalogService(tbl *catalog.Table) *CatalogService {
	return &CatalogService{tbl: tbl}
}

// Search filters by tag and an already validated query. Empty results are an
// empty slice.
func (s *CatalogService) Search(tag, q string) []ProductView {
	found := s.tbl.Find(tag, q)
	out := make([]ProductView, len(found))
	for i, p := range found {
		out[i] = ProductView{Product: p, Availability: Availability(p.Stock)}
	}
	return out
}

func (s *CatalogService) Tags() []string { return s.tbl.Tags() }

func (s *CatalogService) Get(id string) (ProductView, bool) {
	p, ok := s.tbl.Lookup(id)
	if !ok {
		return ProductView{}, false
	}
	return ProductView{Product: p, Availability: Availability(p.Stock)}, true
}

// Availability converts a stock ceiling to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func Availability(stock int) string {
	switch {
	case stock >= 20:
		return StockIn
	case stock > 0:
		return StockLow
	}
	return StockOut
}
