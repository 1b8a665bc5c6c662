package handlers

import "github.com/gofiber/fiber/v2"

const adminKeyHeader = "X-Admin-Key"

// adminKey is the credential presented to admin endpoints: the key query
// parameter, else the X-Admin-Key header.
func adminKey(c *fiber.Ctx) string {
	if k := c.Query("key"); k != "" {
		return k
	}
	return c.Get(adminKeyHeader)
}
