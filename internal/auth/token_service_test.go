package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

func TestNewTokenService(t *testing.T) {
	signingKey := []byte("test-signing-key")

	t.Run("creates token service", func(t *testing.T) {
		service, err := auth.NewTokenService(signingKey, "HS256")

		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("defaults to HS256 when algorithm is empty", func(t *testing.T) {
		service, err := auth.NewTokenService(signingKey, "")

		require.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("rejects empty signing key", func(t *testing.T) {
		_, err := auth.NewTokenService(nil, "HS256")

		assert.Error(t, err)
	})

	t.Run("rejects non HMAC algorithms", func(t *testing.T) {
		_, err := auth.NewTokenService(signingKey, "RS256")

		assert.Error(t, err)
	})

	t.Run("rejects unknown algorithms", func(t *testing.T) {
		_, err := auth.NewTokenService(signingKey, "HS666")

		assert.Error(t, err)
	})
}

func TestTokenService_Issue(t *testing.T) {
	signingKey := []byte("test-signing-key")

	service, err := auth.NewTokenService(signingKey, "HS256",
		auth.WithTokenIssuerName("test-issuer"),
	)
	require.NoError(t, err)

	t.Run("issued token round trips", func(t *testing.T) {
		token, err := service.Issue("user-123", "test@example.com", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := service.Verify(token, auth.TokenKindAccess)
		require.NoError(t, err)

		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "test@example.com", claims.Email)
		assert.Equal(t, auth.TokenKindAccess, claims.Kind)
		assert.Equal(t, "test-issuer", claims.RegisteredClaims.Issuer)
		assert.NotEmpty(t, claims.RegisteredClaims.ID)
	})

	t.Run("stamps expiry from ttl", func(t *testing.T) {
		now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		frozen, err := auth.NewTokenService(signingKey, "HS256",
			auth.WithTokenClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		token, err := frozen.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		claims, err := frozen.Verify(token, auth.TokenKindAccess)
		require.NoError(t, err)

		assert.Equal(t, now.Add(time.Hour).Unix(), claims.Expires().Unix())
		assert.Equal(t, now.Unix(), claims.IssuedAt().Unix())
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := service.Issue("", "test@example.com", auth.TokenKindAccess, time.Hour)
		assert.Error(t, err)
	})

	t.Run("rejects non positive ttl", func(t *testing.T) {
		_, err := service.Issue("user-123", "", auth.TokenKindAccess, 0)
		assert.Error(t, err)
	})

	t.Run("tokens carry unique ids", func(t *testing.T) {
		first, err := service.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)
		second, err := service.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestTokenService_Verify(t *testing.T) {
	signingKey := []byte("test-signing-key")

	service, err := auth.NewTokenService(signingKey, "HS256")
	require.NoError(t, err)

	t.Run("rejects token of the wrong kind", func(t *testing.T) {
		token, err := service.Issue("user-123", "", auth.TokenKindRefresh, time.Hour)
		require.NoError(t, err)

		_, err = service.Verify(token, auth.TokenKindAccess)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.ErrTokenKindMismatch.TextCode, richErr.TextCode)
		assert.Equal(t, "access", richErr.Metadata["expected"])
		assert.Equal(t, "refresh", richErr.Metadata["got"])
	})

	t.Run("rejects access token on the refresh path", func(t *testing.T) {
		token, err := service.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		_, err = service.Verify(token, auth.TokenKindRefresh)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		issuedAt := time.Now().Add(-2 * time.Hour)
		past, err := auth.NewTokenService(signingKey, "HS256",
			auth.WithTokenClock(func() time.Time { return issuedAt }),
		)
		require.NoError(t, err)

		token, err := past.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		_, err = service.Verify(token, auth.TokenKindAccess)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.ErrTokenExpired.TextCode, richErr.TextCode)
	})

	t.Run("accepts token one second before expiry", func(t *testing.T) {
		now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		issuing, err := auth.NewTokenService(signingKey, "HS256",
			auth.WithTokenClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		token, err := issuing.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		checking, err := auth.NewTokenService(signingKey, "HS256",
			auth.WithTokenClock(func() time.Time { return now.Add(time.Hour - time.Second) }),
		)
		require.NoError(t, err)

		_, err = checking.Verify(token, auth.TokenKindAccess)
		assert.NoError(t, err)
	})

	t.Run("rejects token one second after expiry", func(t *testing.T) {
		now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		issuing, err := auth.NewTokenService(signingKey, "HS256",
			auth.WithTokenClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		token, err := issuing.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		checking, err := auth.NewTokenService(signingKey, "HS256",
			auth.WithTokenClock(func() time.Time { return now.Add(time.Hour + time.Second) }),
		)
		require.NoError(t, err)

		_, err = checking.Verify(token, auth.TokenKindAccess)
		assert.Error(t, err)
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		other, err := auth.NewTokenService([]byte("other-signing-key"), "HS256")
		require.NoError(t, err)

		token, err := other.Issue("user-123", "", auth.TokenKindAccess, time.Hour)
		require.NoError(t, err)

		_, err = service.Verify(token, auth.TokenKindAccess)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.ErrTokenMalformed.TextCode, richErr.TextCode)
	})

	t.Run("rejects token without subject", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Kind: auth.TokenKindAccess,
		})

		token, err := raw.SignedString(signingKey)
		require.NoError(t, err)

		_, err = service.Verify(token, auth.TokenKindAccess)
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, auth.ErrTokenMissingSubject.TextCode, richErr.TextCode)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.Verify("not-a-jwt", auth.TokenKindAccess)
		assert.Error(t, err)
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := service.Verify("", auth.TokenKindAccess)
		assert.Error(t, err)
	})
}
