package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/plex-projectplanner/projectplanner/internal/tenant"
	"github.com/plex-projectplanner/projectplanner/internal/web/session"
)

// UserLocalsKey is the fiber locals key holding the uuid.UUID of the signed-in user.
const UserLocalsKey = "user_id"

// UserFromCtx returns the signed-in user stored by the middleware, invalid for anonymous requests.
func UserFromCtx(c *fiber.Ctx) uuid.NullUUID {
	if id, ok := c.Locals(UserLocalsKey).(uuid.UUID); ok {
		return uuid.NullUUID{UUID: id, Valid: true}
	}

	return uuid.NullUUID{}
}

// RequireAuthenticated rejects requests without a valid session with 401
// and requests naming a tenant other than the user's with 403.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := session.FromCtx(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		if err = bindSession(c, data); err != nil {
			return err
		}

		return c.Next()
	}
}

// bindSession records the session user and pins the request to the user's tenant.
// Tenant users can't switch tenants by header, host users can.
func bindSession(c *fiber.Ctx, data *session.Data) error {
	c.Locals(UserLocalsKey, data.UserID)

	if !data.TenantID.Valid {
		return nil
	}

	if requested := tenant.FromCtx(c); requested.Valid && requested.UUID != data.TenantID.UUID {
		log.Warn().Stringer("user_id", data.UserID).Stringer("tenant", requested.UUID).
			Msg("tenant of the request differs from the tenant of the user")

		return fiber.NewError(fiber.StatusForbidden, "You don't have permission to access this tenant")
	}

	tenant.Set(c, data.TenantID)

	return nil
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// Without a session it answers 401, without the permission 403.
// If anonymous access is allowed only the user and tenant of an existing session are recorded.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := session.FromCtx(c)
		if err == nil {
			if bindErr := bindSession(c, data); bindErr != nil {
				return bindErr
			}
		}

		if authService.AllowAnonymous() {
			return c.Next()
		}

		if err != nil {
			log.Debug().Err(err).Str("permission", permission).Msg("no valid session")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		hasPermission, err := authService.HasPermission(data.UserID, permission)
		if err != nil {
			log.Error().Err(err).Stringer("user_id", data.UserID).Str("permission", permission).
				Msg("Failed to check permission")

			return err
		}

		if !hasPermission {
			log.Warn().Stringer("user_id", data.UserID).Str("permission", permission).
				Msg("User lacks required permission")

			return fiber.NewError(fiber.StatusForbidden, "You don't have permission to access this resource")
		}

		return c.Next()
	}
}
