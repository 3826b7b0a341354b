package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pmpulse/status-engine/internal/observability"
)

// Correlation copies the request id into the request's user context so
// downstream logging can tag entries with it.
func Correlation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if correlationID == "" {
			if value, ok := c.Locals("requestid").(string); ok {
				correlationID = strings.TrimSpace(value)
			}
		}

		if correlationID != "" {
			c.SetUserContext(observability.WithCorrelationID(c.UserContext(), correlationID))
		}
		return c.Next()
	}
}
