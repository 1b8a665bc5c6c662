package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"glowcart/internal/domain"
	applog "glowcart/internal/log"
	"glowcart/internal/services"
	"glowcart/internal/validate"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

func promoParam(c *fiber.Ctx, raw string) string {
	promo, ok := validate.Promo(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "promo"})
		return ""
	}
	return promo
}

func (h *CheckoutHandler) page(c *fiber.Ctx, status int, promo string, extra fiber.Map) error {
	q, err := h.Checkout.QuoteSession(c.UserContext(), ensureSID(c), promo)
	if err != nil {
		return err
	}
	data := fiber.Map{
		"Quote": q,
		"Empty": len(q.Lines) == 0,
		"Promo": promo,
	}
	for k, v := range extra {
		data[k] = v
	}
	c.Status(status)
	return render(c, "checkout", data)
}

// Show renders GET /checkout?promo=.
func (h *CheckoutHandler) Show(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, promoParam(c, c.Query("promo")), nil)
}

// Place handles the checkout form.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	promo := promoParam(c, c.FormValue("promo"))
	customer := domain.Customer{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Address:  c.FormValue("address"),
		City:     c.FormValue("city"),
		Postcode: c.FormValue("postcode"),
	}

	receipt, err := h.Checkout.Place(c.UserContext(), sid, promo, customer)
	var ce *services.CustomerError
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return h.page(c, fiber.StatusBadRequest, promo, fiber.Map{"Err": "Your bag is empty."})
	case errors.As(err, &ce):
		applog.Security(c, "validation.fail", map[string]any{"fields": ce.Fields})
		return h.page(c, fiber.StatusBadRequest, promo, fiber.Map{
			"Err":      "Please check: " + strings.Join(ce.Fields, ", "),
			"Customer": customer,
		})
	case err != nil:
		return err
	}

	applog.Audit(c, "checkout.place", map[string]any{
		"order_id": receipt.OrderID,
		"total":    receipt.Summary.Total,
		"promo":    receipt.Promo,
	})
	return render(c, "confirmation", fiber.Map{"Receipt": receipt})
}

type quoteRequest struct {
	Items []domain.RawLine `json:"items"`
	Promo string           `json:"promo"`
}

// Quote answers POST /api/checkout/quote for carts held by the client.
func (h *CheckoutHandler) Quote(c *fiber.Ctx) error {
	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Body must be JSON")
	}
	promo, ok := validate.Promo(req.Promo)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "promo invalid")
	}
	return c.JSON(h.Checkout.QuoteRaw(req.Items, promo))
}
