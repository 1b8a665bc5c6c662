package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"glowcart/internal/domain"
)

// Options selects how much of an order payload is checked.
type Options struct {
	// Strict checks every field and reports each violation. Otherwise only
	// the top-level shape is checked and no details are reported.
	Strict bool
}

// PayloadError is a rejected order payload. Details is empty in loose mode.
type PayloadError struct {
	Details []string
	Strict  bool
}

func (e *PayloadError) Error() string {
	if len(e.Details) == 0 {
		return "invalid payload"
	}
	return "invalid payload: " + strings.Join(e.Details, "; ")
}

var (
	totalsKeys   = []string{"subtotal", "shipping", "vat", "total"}
	customerKeys = []string{"name", "email", "address", "city", "postcode"}
)

// Order checks a decoded order body (as produced by a json.Decoder with
// UseNumber, or plain float64 numbers). It returns nil or a *PayloadError.
func Order(body any, opts Options) error {
	var details []string
	if opts.Strict {
		details = strictOrder(body)
	} else {
		details = looseOrder(body)
	}
	if len(details) == 0 {
		return nil
	}
	if !opts.Strict {
		details = nil
	}
	return &PayloadError{Details: details, Strict: opts.Strict}
}

func looseOrder(body any) []string {
	obj, ok := body.(map[string]any)
	if !ok {
		return []string{"Body must be JSON"}
	}
	var out []string
	if _, ok := obj["items"].([]any); !ok {
		out = append(out, "items[] required")
	}
	if _, ok := obj["totals"].(map[string]any); !ok {
		out = append(out, "totals required")
	}
	if _, ok := obj["customer"].(map[string]any); !ok {
		out = append(out, "customer required")
	}
	return out
}

func strictOrder(body any) []string {
	var out []string
	obj, ok := body.(map[string]any)
	if !ok {
		out = append(out, "Body must be JSON")
		obj = map[string]any{}
	}

	items, isList := obj["items"].([]any)
	if !isList || len(items) == 0 {
		out = append(out, "items[] required")
	}
	totals, totalsOK := obj["totals"].(map[string]any)
	if !totalsOK {
		out = append(out, "totals required")
	}
	customer, customerOK := obj["customer"].(map[string]any)
	if !customerOK {
		out = append(out, "customer required")
	}

	for _, raw := range items {
		it, _ := raw.(map[string]any)
		if id, ok := it["id"].(string); !ok || id == "" {
			out = append(out, "item.id missing")
		}
		if p, ok := number(it["price"]); !ok || p < 0 {
			out = append(out, "item.price invalid")
		}
		if q, ok := number(it["qty"]); !ok || q < 1 || q != math.Trunc(q) {
			out = append(out, "item.qty invalid")
		}
	}
	if totalsOK {
		for _, k := range totalsKeys {
			if v, ok := number(totals[k]); !ok || v < 0 {
				out = append(out, fmt.Sprintf("totals.%s invalid", k))
			}
		}
	}
	if customerOK {
		for _, k := range customerKeys {
			if s, ok := customer[k].(string); !ok || s == "" {
				out = append(out, fmt.Sprintf("customer.%s required", k))
			}
		}
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && !math.IsInf(f, 0)
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Customer checks the checkout form. Messages name the form field.
func Customer(c domain.Customer) (domain.Customer, []string) {
	var bad []string
	var ok bool
	if c.Name, ok = Name(c.Name); !ok {
		bad = append(bad, "name")
	}
	if c.Email, ok = Email(c.Email); !ok {
		bad = append(bad, "email")
	}
	if c.Address, ok = Name(c.Address); !ok {
		bad = append(bad, "address")
	}
	if c.City, ok = Name(c.City); !ok {
		bad = append(bad, "city")
	}
	if c.Postcode, ok = Postcode(c.Postcode); !ok {
		bad = append(bad, "postcode")
	}
	return c, bad
}
