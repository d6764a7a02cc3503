package middleware

import (
	"strings"

	"etf-analysis/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORS allows the comma-separated origins in allowed. Empty or "*" allows any
// origin. Preflight requests are answered directly.
func CORS(allowed string) fiber.Handler {
	origins := map[string]bool{}
	allowAll := strings.TrimSpace(allowed) == ""
	for _, o := range strings.Split(allowed, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			origins[strings.ToLower(o)] = true
		}
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		// same-origin or tools
		if origin == "" {
			return c.Next()
		}
		if !allowAll && !origins[strings.ToLower(strings.TrimRight(origin, "/"))] {
			return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, nil)
		}
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, Authorization, X-Trace-Id")
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}
