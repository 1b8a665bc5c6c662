package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"glowcart/internal/log"
	"glowcart/internal/services"
	"glowcart/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
}

// filters reads tag and q. ok is false when either is malformed.
func filters(c *fiber.Ctx) (tag, q string, ok bool) {
	if raw := strings.TrimSpace(c.Query("tag")); raw != "" {
		if tag, ok = validate.ID(raw); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "tag"})
			return "", "", false
		}
	}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		if q, ok = validate.Q(raw); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
			return tag, "", false
		}
	}
	return tag, q, true
}

// Home renders the product grid with the shopper's cart.
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	summary, err := h.Cart.For(ensureSID(c)).Summary(c.UserContext())
	if err != nil {
		return err
	}
	data := fiber.Map{"Tags": h.Catalog.Tags(), "Cart": summary, "Tag": "", "Q": ""}

	tag, q, ok := filters(c)
	if !ok {
		data["Products"] = []services.ProductView{}
		data["Err"] = "Enter a valid keyword (letters/numbers only)"
		c.Status(fiber.StatusBadRequest)
		return render(c, "index", data)
	}
	data["Tag"], data["Q"] = tag, q
	data["Products"] = h.Catalog.Search(tag, q)
	return render(c, "index", data)
}

// Products answers GET /api/products.
func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	tag, q, ok := filters(c)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid filter")
	}
	products := h.Catalog.Search(tag, q)
	return c.JSON(fiber.Map{"products": products, "count": len(products)})
}
