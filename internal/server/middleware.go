package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

const claimsContextKey = "session_claims"

// RequireAccess rejects requests without a valid bearer access token. Valid
// claims are stored in the request locals for handlers downstream.
func RequireAccess(gate *auth.TokenGate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := gate.Authenticate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// OptionalAccess attaches claims when a valid token is present and lets the
// request through either way.
func OptionalAccess(gate *auth.TokenGate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims := gate.AuthenticateOptional(c.Get(fiber.HeaderAuthorization)); claims != nil {
			c.Locals(claimsContextKey, claims)
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the claims stored by RequireAccess, or nil.
func ClaimsFromCtx(c *fiber.Ctx) *auth.SessionClaims {
	claims, ok := c.Locals(claimsContextKey).(*auth.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
