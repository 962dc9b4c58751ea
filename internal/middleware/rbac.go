package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if role != "" {
			allowed[role] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := roleFromLocals(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func roleFromLocals(value interface{}) models.Role {
	switch v := value.(type) {
	case models.Role:
		return v
	case string:
		return models.NormalizeRole(v)
	default:
		if value == nil {
			return ""
		}
		return models.NormalizeRole(fmt.Sprintf("%v", value))
	}
}
