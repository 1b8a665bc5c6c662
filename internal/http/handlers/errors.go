package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "glowcart/internal/log"
	"glowcart/internal/ratelimit"
	"glowcart/internal/services"
	"glowcart/internal/validate"
)

const (
	msgServerError = "Server error"
	msgPageError   = "Something went wrong. Please try again."
	msgTooMany     = "Too many requests. Please wait a minute."
)

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler maps errors to responses: JSON {error} under /api, the
// notfound page elsewhere. Unexpected errors are logged and never described
// to the caller. The status is set before logging so entries carry it.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var pe *validate.PayloadError
	var fe *fiber.Error
	switch {
	case errors.As(err, &pe):
		c.Status(fiber.StatusBadRequest)
		applog.Security(c, "validation.fail", map[string]any{"details": pe.Details})
		body := fiber.Map{"error": "Invalid payload"}
		if pe.Strict {
			body["details"] = pe.Details
		}
		return c.JSON(body)
	case errors.Is(err, services.ErrUnauthorized):
		c.Status(fiber.StatusUnauthorized)
		applog.Security(c, "access.denied.orders", nil)
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ratelimit.ErrLimited):
		c.Status(fiber.StatusTooManyRequests)
		applog.Security(c, "rate.orders.hit", map[string]any{"client": ratelimit.ClientKey(c)})
		return respond(c, fiber.StatusTooManyRequests, msgTooMany)
	case errors.Is(err, ErrMethodNotAllowed):
		return respond(c, fiber.StatusMethodNotAllowed, "Method Not Allowed")
	case errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError:
		return respond(c, fe.Code, fe.Message)
	}

	c.Status(fiber.StatusInternalServerError)
	applog.Error(c, "server.error", err, nil)
	if isAPI(c) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgServerError})
	}
	if rerr := renderError(c, fiber.StatusInternalServerError, msgPageError); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(msgPageError)
	}
	return nil
}

func respond(c *fiber.Ctx, status int, msg string) error {
	if isAPI(c) {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	if rerr := renderError(c, status, msg); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}
