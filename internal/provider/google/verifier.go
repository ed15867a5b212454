// Package google verifies Google issued OpenID Connect identity tokens
// against Google's published JWKS and maps their claims to profile hints.
package google

import (
	"context"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

const (
	jwksURL = "https://www.googleapis.com/oauth2/v3/certs"

	issuerHTTPS = "https://accounts.google.com"
	issuerBare  = "accounts.google.com"
)

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verifier validates id_token values for one OAuth client id.
type Verifier struct {
	clientID string
	keyfunc  jwt.Keyfunc
	jwks     *keyfunc.JWKS
	now      func() time.Time
}

var _ auth.ProviderTokenVerifier = (*Verifier)(nil)

// Option customizes a Verifier.
type Option func(*Verifier)

// WithKeyfunc overrides JWKS resolution; tests use a static key set.
func WithKeyfunc(fn jwt.Keyfunc) Option {
	return func(v *Verifier) {
		if fn != nil {
			v.keyfunc = fn
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) Option {
	return func(v *Verifier) {
		if clock != nil {
			v.now = clock
		}
	}
}

// New creates a Verifier. Unless a keyfunc is injected it fetches Google's
// JWKS and keeps it refreshed in the background until ctx is cancelled.
func New(ctx context.Context, clientID string, opts ...Option) (*Verifier, error) {
	if clientID == "" {
		return nil, goerrors.New("google client id is required", goerrors.CategoryBadInput)
	}

	v := &Verifier{
		clientID: clientID,
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	if v.keyfunc == nil {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch google JWKS")
		}
		v.jwks = jwks
		v.keyfunc = jwks.Keyfunc
	}

	return v, nil
}

// Close stops the background JWKS refresh.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// VerifyIDToken implements auth.ProviderTokenVerifier. Every rejection maps
// to ErrInvalidProviderToken; the caller cannot distinguish why a provider
// token failed, only that it did.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.ExternalIdentity, error) {
	token, err := jwt.ParseWithClaims(idToken, &idTokenClaims{}, v.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, auth.ErrInvalidProviderToken.Clone().WithMetadata(map[string]any{
			"reason": err.Error(),
		})
	}

	claims, ok := token.Claims.(*idTokenClaims)
	if !ok || !token.Valid {
		return nil, auth.ErrInvalidProviderToken
	}

	if claims.Issuer != issuerHTTPS && claims.Issuer != issuerBare {
		return nil, auth.ErrInvalidProviderToken.Clone().WithMetadata(map[string]any{
			"reason": "unexpected issuer",
		})
	}

	if claims.Subject == "" {
		return nil, auth.ErrInvalidProviderToken.Clone().WithMetadata(map[string]any{
			"reason": "missing subject",
		})
	}

	// Google subjects are opaque numeric strings; profile rows are keyed by
	// UUID. Hashing the subject yields the same local identity on every login.
	localID, err := hashid.NewUUID("google:" + claims.Subject)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to derive local identity id")
	}

	return &auth.ExternalIdentity{
		ID:        localID.String(),
		Email:     claims.Email,
		FullName:  claims.Name,
		AvatarURL: claims.Picture,
	}, nil
}
