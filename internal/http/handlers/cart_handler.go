package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "glowcart/internal/log"
	"glowcart/internal/services"
	"glowcart/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// back picks where a cart form returns to; only known pages are allowed.
func back(c *fiber.Ctx) string {
	if c.FormValue("back") == "/checkout" {
		return "/checkout"
	}
	return "/"
}

func formID(c *fiber.Ctx) (string, error) {
	id, ok := validate.ID(c.FormValue("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return "", fiber.NewError(fiber.StatusBadRequest, "Missing product")
	}
	return id, nil
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	id, err := formID(c)
	if err != nil {
		return err
	}
	if err := h.Cart.For(ensureSID(c)).Add(c.UserContext(), id); err != nil {
		return err
	}
	return c.Redirect(back(c))
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, err := formID(c)
	if err != nil {
		return err
	}
	qty := validate.Qty(c.FormValue("qty"))
	if err := h.Cart.For(ensureSID(c)).SetQty(c.UserContext(), id, qty); err != nil {
		return err
	}
	return c.Redirect(back(c))
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, err := formID(c)
	if err != nil {
		return err
	}
	if err := h.Cart.For(ensureSID(c)).Remove(c.UserContext(), id); err != nil {
		return err
	}
	return c.Redirect(back(c))
}

type cartRequest struct {
	ID  string `json:"id"`
	Qty *int   `json:"qty"`
}

func (h *CartHandler) parse(c *fiber.Ctx, needQty bool) (cartRequest, error) {
	var req cartRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Body must be JSON")
	}
	var ok bool
	if req.ID, ok = validate.ID(req.ID); !ok {
		return req, fiber.NewError(fiber.StatusBadRequest, "id required")
	}
	if needQty && req.Qty == nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "qty required")
	}
	return req, nil
}

func (h *CartHandler) summary(c *fiber.Ctx, sid string) error {
	s, err := h.Cart.For(sid).Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(s)
}

// Get answers GET /api/cart.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	return h.summary(c, ensureSID(c))
}

// AddJSON answers POST /api/cart {id}.
func (h *CartHandler) AddJSON(c *fiber.Ctx) error {
	req, err := h.parse(c, false)
	if err != nil {
		return err
	}
	sid := ensureSID(c)
	if err := h.Cart.For(sid).Add(c.UserContext(), req.ID); err != nil {
		return err
	}
	return h.summary(c, sid)
}

// SetJSON answers PUT /api/cart {id, qty}.
func (h *CartHandler) SetJSON(c *fiber.Ctx) error {
	req, err := h.parse(c, true)
	if err != nil {
		return err
	}
	sid := ensureSID(c)
	if err := h.Cart.For(sid).SetQty(c.UserContext(), req.ID, *req.Qty); err != nil {
		return err
	}
	return h.summary(c, sid)
}

// RemoveJSON answers DELETE /api/cart/:id.
func (h *CartHandler) RemoveJSON(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "id required")
	}
	sid := ensureSID(c)
	if err := h.Cart.For(sid).Remove(c.UserContext(), id); err != nil {
		return err
	}
	return h.summary(c, sid)
}
