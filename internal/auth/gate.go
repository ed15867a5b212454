package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/cronoplan/cronoplan-api/internal/profile"
)

const bearerScheme = "Bearer"

// TokenGate authenticates individual requests: it extracts the bearer token,
// verifies it as an access token, and resolves the verified subject to a
// profile. Every rejection reason carries a distinct text code but the same
// 401 outcome.
type TokenGate struct {
	tokens   *TokenService
	profiles ProfileStore
	logger   Logger
}

// NewTokenGate returns a gate backed by the codec and the profile store.
func NewTokenGate(tokens *TokenService, profiles ProfileStore) *TokenGate {
	return &TokenGate{
		tokens:   tokens,
		profiles: profiles,
		logger:   defLogger{},
	}
}

// WithLogger overrides the fallback logger.
func (g *TokenGate) WithLogger(logger Logger) *TokenGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Authenticate verifies the Authorization header value and returns the claims
// of a valid access token.
func (g *TokenGate) Authenticate(authorization string) (*SessionClaims, error) {
	raw, err := bearerToken(authorization)
	if err != nil {
		return nil, err
	}

	claims, err := g.tokens.Verify(raw, TokenKindAccess)
	if err != nil {
		g.logger.Debug("request rejected", "error", err)
		return nil, err
	}

	return claims, nil
}

// AuthenticateOptional never fails: it returns nil claims when credentials
// are absent or invalid. Used by endpoints that behave differently for
// anonymous callers.
func (g *TokenGate) AuthenticateOptional(authorization string) *SessionClaims {
	claims, err := g.Authenticate(authorization)
	if err != nil {
		return nil
	}
	return claims
}

// ResolveProfile looks up the profile for an already verified subject. Unlike
// the reconciler this path is strict: by the time a session is established the
// row is expected to exist.
func (g *TokenGate) ResolveProfile(ctx context.Context, subject string) (*profile.Profile, error) {
	record, err := g.profiles.GetByID(ctx, subject)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrProfileNotFound.Clone().WithMetadata(map[string]any{
				"subject": subject,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve profile")
	}

	return record, nil
}

func bearerToken(authorization string) (string, error) {
	header := strings.TrimSpace(authorization)
	if header == "" {
		return "", ErrMissingAuthorization
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", ErrMissingAuthorization.Clone().WithMetadata(map[string]any{
			"reason": "authorization scheme is not bearer",
		})
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingAuthorization
	}

	return token, nil
}
