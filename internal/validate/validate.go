package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// any country's postal code: letters, digits, inner spaces and hyphens
	rePostcode = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 -]{0,10}[A-Za-z0-9]$`)
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ        = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePromo    = regexp.MustCompile(`^[A-Za-z0-9]{1,20}$`)
)

func Postcode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 12 {
		return "", false
	}
	return strings.ToUpper(s), rePostcode.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Qty parses a form quantity; anything unreadable or below 1 is 1. The
// stock ceiling is applied later by the cart.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ID validates a simple resource identifier (product ids, session ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Promo accepts an empty code or a short alphanumeric one.
func Promo(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || rePromo.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 80 {
		return "", false
	}
	return s, true
}
