// Package health serves the check alive endpoint used by load balancers.
package health

import (
	"github.com/gofiber/fiber/v2"
)

// Path of the check alive endpoint.
const Path = "/api/v1/health-status"

// Status is the body of the check alive endpoint.
type Status struct {
	Status string `json:"status"`
}

// Register adds the check alive route. It answers 503 once alive reports false.
func Register(app *fiber.App, alive func() bool) {
	app.Get(Path, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")

		if !alive() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(Status{Status: "Unhealthy"})
		}

		return c.JSON(Status{Status: "Healthy"})
	})
}
