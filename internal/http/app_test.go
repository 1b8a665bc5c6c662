package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"glowcart/internal/config"
	"glowcart/internal/events"
	"glowcart/internal/http/handlers"
	"glowcart/internal/store"
)

const testAdminKey = "letmein"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testApp struct {
	app   *fiber.App
	kv    *store.SQLStore
	clock *clock
	deps  *handlers.Deps
}

func testConfig() config.Config {
	return config.Config{
		StaticDir:        "../../web/static",
		AdminKey:         testAdminKey,
		OrdersStrict:     true,
		RateLimitEnabled: true,
		RateLimitMax:     10,
		RateLimitWindow:  time.Minute,
	}
}

// newApp wires the real routes over an in-memory store with a frozen clock.
func newApp(t *testing.T, tweak ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := testConfig()
	for _, f := range tweak {
		f(&cfg)
	}
	clk := &clock{t: time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)}
	kv, err := store.OpenSQL(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	kv.WithClock(clk.Now)

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())

	deps := handlers.NewDeps(kv, events.Nop{}, cfg)
	handlers.Register(app, deps, kv, cfg)
	return &testApp{app: app, kv: kv, clock: clk, deps: deps}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := a.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formReq(target string, form string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func decodeJSON(t *testing.T, body string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("not json: %q", body)
	}
	return m
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

const validOrder = `{
	"items": [{"id": "cln-01", "price": 12, "qty": 2}],
	"totals": {"subtotal": 24, "shipping": 3.95, "vat": 4.8, "total": 32.75},
	"customer": {"name": "Ada", "email": "ada@example.com", "address": "1 Loop St", "city": "Leeds", "postcode": "LS1 1AA"}
}`
