// Package tenant resolves the tenant of a request.
package tenant

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalsKey is the fiber locals key holding the tenant uuid.UUID.
// The access log reads the same key.
const LocalsKey = "tenant_id"

// Config of the tenant middleware.
type Config struct {
	// Enabled turns tenant resolution on. Disabled means every request is a host request.
	Enabled bool
	// Header carrying the tenant id. Default: "__tenant"
	Header string
}

// New creates the tenant resolution middleware.
// A malformed tenant id is answered with 400 Bad Request.
func New(cfg Config) fiber.Handler {
	if cfg.Header == "" {
		cfg.Header = "__tenant"
	}

	return func(c *fiber.Ctx) error {
		if !cfg.Enabled {
			return c.Next()
		}

		raw := strings.TrimSpace(c.Get(cfg.Header))
		if raw == "" {
			return c.Next()
		}

		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid tenant id "+raw)
		}

		c.Locals(LocalsKey, id)

		return c.Next()
	}
}

// FromCtx returns the tenant of the request, invalid for host requests.
func FromCtx(c *fiber.Ctx) uuid.NullUUID {
	if id, ok := c.Locals(LocalsKey).(uuid.UUID); ok {
		return uuid.NullUUID{UUID: id, Valid: true}
	}

	return uuid.NullUUID{}
}

// Set overrides the tenant of the request, an invalid id makes it a host request.
func Set(c *fiber.Ctx, id uuid.NullUUID) {
	if !id.Valid {
		c.Locals(LocalsKey, nil)
		return
	}

	c.Locals(LocalsKey, id.UUID)
}
