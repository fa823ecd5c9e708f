package middleware

import "github.com/gofiber/fiber/v2"

// SecurityHeaders sets a fixed set of response headers, e.g. HSTS when
// serving over TLS
func SecurityHeaders(headers map[string]string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for k, v := range headers {
			c.Set(k, v)
		}
		return c.Next()
	}
}
