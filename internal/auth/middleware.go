package auth

import (
	"fmt"
	"strings"

	"attendance-backend/internal/config"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/scope"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const CtxPrincipalKey = "principal"

// JWTMiddleware verifies the bearer token and re-loads the user on every
// request. A token for a deactivated user is rejected immediately, which is
// what force-logout means here: the session dies on the next round-trip.
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		token, err := jwt.ParseWithClaims(parts[1], &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Could not parse token claims")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unknown user")
		}
		if !user.Active {
			return fiber.NewError(fiber.StatusUnauthorized, "Account disabled")
		}

		c.Locals(CtxPrincipalKey, scope.Principal{
			UserID:     user.ID,
			Role:       user.Role,
			Department: user.Department,
		})

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := c.Locals(CtxPrincipalKey).(scope.Principal)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Missing principal")
		}

		for _, r := range allowedRoles {
			if r == p.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You do not have permission for this operation")
	}
}

// Principal pulls the authenticated principal out of the request context.
func Principal(c *fiber.Ctx) (scope.Principal, error) {
	p, ok := c.Locals(CtxPrincipalKey).(scope.Principal)
	if !ok {
		return scope.Principal{}, fiber.NewError(fiber.StatusForbidden, "Missing principal")
	}
	return p, nil
}
