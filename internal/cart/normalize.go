package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"glowcart/internal/catalog"
	"glowcart/internal/domain"
)

// Normalize reconciles untrusted lines with the inventory table. Unknown ids
// are dropped, quantities are clamped to [1, stock] and name/price/img come
// from the table. Order is kept and repeated ids are not merged.
func Normalize(tbl *catalog.Table, raw []domain.RawLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(raw))
	for _, r := range raw {
		p, ok := tbl.Lookup(r.ID)
		if !ok {
			continue
		}
		out = append(out, domain.CartLine{
			ID:    r.ID,
			Name:  p.Name,
			Price: p.Price,
			Img:   p.Img,
			Qty:   clamp(coerceQty(r.Qty), 1, p.Stock),
		})
	}
	return out
}

// coerceQty reads a JSON-ish quantity. Missing, zero, empty or non-numeric
// values count as 1; fractions are truncated.
func coerceQty(v any) int {
	var f float64
	switch q := v.(type) {
	case int:
		f = float64(q)
	case int64:
		f = float64(q)
	case float64:
		f = q
	case json.Number:
		n, err := q.Float64()
		if err != nil {
			return 1
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return 1
		}
		f = n
	default:
		return 1
	}
	if f == 0 || math.IsNaN(f) {
		return 1
	}
	if math.IsInf(f, 1) || f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
