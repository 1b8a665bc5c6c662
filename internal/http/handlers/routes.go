package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"glowcart/internal/config"
	applog "glowcart/internal/log"
	"glowcart/internal/ratelimit"
	"glowcart/internal/store"
)

const csrfCookie = "csrf_"

// Register mounts the JSON API, the storefront pages and static assets.
// Page forms are CSRF-protected; the API is not.
func Register(app *fiber.App, d *Deps, kv store.Store, cfg config.Config) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := kv.Ping(c.UserContext()); err != nil {
			applog.Error(c, "health.store", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Static("/static", cfg.StaticDir)

	// ---------- API ----------
	api := app.Group("/api", cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type, " + adminKeyHeader,
	}))
	api.Get("/products", d.CatalogHandler.Products)

	api.Get("/cart", d.CartHandler.Get)
	api.Post("/cart", d.CartHandler.AddJSON)
	api.Put("/cart", d.CartHandler.SetJSON)
	api.Delete("/cart/:id", d.CartHandler.RemoveJSON)
	api.Post("/checkout/quote", d.CheckoutHandler.Quote)

	orderLimit := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimitEnabled {
		orderLimit = ratelimit.New(kv, ratelimit.Config{
			Max:        cfg.RateLimitMax,
			Expiration: cfg.RateLimitWindow,
		})
	}
	api.Post("/orders", orderLimit, d.OrderHandler.Create)
	// Get also registers HEAD; listing answers GET only
	api.Head("/orders", d.OrderHandler.MethodNotAllowed)
	api.Get("/orders", d.OrderHandler.List)
	api.All("/orders", d.OrderHandler.MethodNotAllowed)
	api.Use(func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	// ---------- Pages ----------
	app.Use(csrf.New(csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/static/")
		},
		KeyLookup:      "form:csrf",
		CookieName:     csrfCookie,
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return renderError(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Get("/", d.CatalogHandler.Home)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/update", d.CartHandler.Update)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Get("/checkout", d.CheckoutHandler.Show)
	// placing from the storefront draws on the same per-client budget as the API
	app.Post("/checkout", orderLimit, d.CheckoutHandler.Place)

	app.Use(func(c *fiber.Ctx) error {
		return renderError(c, fiber.StatusNotFound, "Page not found")
	})
}
