package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sacm-dev/sacm-api/internal/authz"
	"github.com/sacm-dev/sacm-api/internal/service"
	"github.com/sacm-dev/sacm-api/internal/utils"
)

const permissionSetLocal = "permission_set"

// ResolvePermissions resolves the actor's effective permission set once per
// request and binds it to the request. Guards further down the chain read
// the same snapshot, so a role edit mid-request cannot split a decision.
func ResolvePermissions(permissions service.PermissionService, logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "permission_middleware").Logger()

	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(uint)

		set, err := permissions.Resolve(c.UserContext(), userID)
		if err != nil {
			log.Error().Err(err).Uint("user_id", userID).Msg("failed to resolve permissions")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve permissions")
		}

		c.Locals(permissionSetLocal, set)
		return c.Next()
	}
}

// PermissionSetFromRequest returns the permission set bound by
// ResolvePermissions, or the empty set when none is bound.
func PermissionSetFromRequest(c *fiber.Ctx) authz.PermissionSet {
	if set, ok := c.Locals(permissionSetLocal).(authz.PermissionSet); ok {
		return set
	}
	return authz.Empty()
}

// RequirePermission rejects requests whose resolved set does not allow the
// given permission code.
func RequirePermission(code string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !PermissionSetFromRequest(c).Allows(code) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		roleValue := c.Locals("user_role")
		role := normalizeRoleValue(roleValue)
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
