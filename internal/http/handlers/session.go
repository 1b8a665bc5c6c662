package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"glowcart/internal/validate"
)

const sidCookie = "sid"

// ensureSID returns the shopper's session id, issuing a new cookie when the
// current one is missing or malformed.
func ensureSID(c *fiber.Ctx) string {
	if sid, ok := validate.ID(c.Cookies(sidCookie)); ok {
		return sid
	}
	sid := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
	})
	return sid
}
