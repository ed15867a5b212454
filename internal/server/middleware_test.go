package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronoplan/cronoplan-api/internal/auth"
	"github.com/cronoplan/cronoplan-api/internal/server"
)

func newMiddlewareApp(t *testing.T) (*fiber.App, *auth.PairIssuer) {
	t.Helper()

	tokens, err := auth.NewTokenService([]byte("test-signing-key"), "HS256")
	require.NoError(t, err)

	issuer, err := auth.NewPairIssuer(tokens, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	gate := auth.NewTokenGate(tokens, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: server.ErrorHandler(auth.DefaultLogger(), false),
	})

	app.Get("/protected", server.RequireAccess(gate), func(c *fiber.Ctx) error {
		claims := server.ClaimsFromCtx(c)
		return c.JSON(fiber.Map{"subject": claims.Subject()})
	})

	app.Get("/open", server.OptionalAccess(gate), func(c *fiber.Ctx) error {
		if claims := server.ClaimsFromCtx(c); claims != nil {
			return c.JSON(fiber.Map{"subject": claims.Subject()})
		}
		return c.JSON(fiber.Map{"subject": ""})
	})

	return app, issuer
}

func TestRequireAccess(t *testing.T) {
	app, issuer := newMiddlewareApp(t)

	pair, err := issuer.IssuePair("user-123", "test@example.com")
	require.NoError(t, err)

	t.Run("stores claims for the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

		res, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("rejects requests without a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)

		res, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestOptionalAccess(t *testing.T) {
	app, issuer := newMiddlewareApp(t)

	t.Run("passes claims through when present", func(t *testing.T) {
		pair, err := issuer.IssuePair("user-123", "")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

		res, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("lets anonymous requests through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)

		res, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("treats an invalid token as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		res, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}
