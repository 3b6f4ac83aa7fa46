package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pilotify/pilotify-api/internal/utils"
)

const claimsKey = "claims"

func tokenFrom(c *fiber.Ctx, cookieName string) string {
	if tok := c.Cookies(cookieName); tok != "" {
		return tok
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// JWTFromCookie rejects the request unless a valid session token is sent
// in the cookie or as a Bearer token.
func JWTFromCookie(secret, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := tokenFrom(c, cookieName)
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}
		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// TryJWTFromCookie is JWTFromCookie for routes that also serve anonymous
// callers. Missing or invalid tokens leave the request unauthenticated.
func TryJWTFromCookie(secret, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := tokenFrom(c, cookieName); tokenStr != "" {
			if claims, err := utils.ParseJWT(secret, tokenStr); err == nil {
				c.Locals(claimsKey, claims)
			}
		}
		return c.Next()
	}
}
