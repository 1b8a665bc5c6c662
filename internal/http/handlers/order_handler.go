package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "glowcart/internal/log"
	"glowcart/internal/services"
)

var ErrMethodNotAllowed = errors.New("method not allowed")

type OrderHandler struct {
	Orders *services.OrderService
}

// Create answers POST /api/orders with 201 {id}.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	id, err := h.Orders.Create(c.UserContext(), c.Body())
	if err != nil {
		return err
	}
	applog.Audit(c, "order.create", map[string]any{"order_id": id, "strict": h.Orders.Strict()})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// List answers GET /api/orders for holders of the admin key.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.UserContext(), adminKey(c))
	if err != nil {
		return err
	}
	applog.Audit(c, "orders.list", map[string]any{"count": len(orders)})
	return c.JSON(fiber.Map{"orders": orders})
}

func (h *OrderHandler) MethodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, "GET, POST")
	return ErrMethodNotAllowed
}
