package auth

import (
	"strings"

	"backend-touristsafety/internal/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// JWTMiddleware validates bearer tokens and stores user_id and role in locals.
// When roles are given, tokens for any other role are rejected with 403, as are
// unverified police tokens on every route. Websocket upgrades may pass the token
// as the access_token query parameter.
func JWTMiddleware(secret string, roles ...identity.Role) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" && websocket.IsWebSocketUpgrade(c) {
			token = c.Query("access_token")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := parseToken(secretBytes, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		if claims.Role == identity.RolePolice && !claims.Verified {
			return fiber.NewError(fiber.StatusForbidden, "police account not verified")
		}
		if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
			return fiber.NewError(fiber.StatusForbidden, "role not allowed")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

func roleAllowed(role identity.Role, allowed []identity.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
