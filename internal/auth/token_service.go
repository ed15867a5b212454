package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService signs and verifies session tokens. It owns the process wide
// signing secret and algorithm; both are loaded once at startup and read only
// afterwards. Issue and Verify are pure functions of their inputs plus the
// injected clock, so the service is safe under any concurrency.
type TokenService struct {
	signingKey []byte
	method     jwt.SigningMethod
	issuer     string
	logger     Logger
	now        func() time.Time
}

// TokenServiceOption customizes a TokenService.
type TokenServiceOption func(*TokenService)

// WithTokenLogger overrides the fallback logger.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// WithTokenClock injects a custom clock (useful for tests).
func WithTokenClock(clock func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenIssuerName sets the iss claim stamped on issued tokens.
func WithTokenIssuerName(issuer string) TokenServiceOption {
	return func(ts *TokenService) {
		ts.issuer = issuer
	}
}

// NewTokenService creates a TokenService for the given secret and HMAC
// algorithm name (HS256, HS384, or HS512).
func NewTokenService(signingKey []byte, algorithm string, opts ...TokenServiceOption) (*TokenService, error) {
	if len(signingKey) == 0 {
		return nil, goerrors.New("signing key must not be empty", goerrors.CategoryBadInput)
	}

	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}

	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, goerrors.New(
			fmt.Sprintf("unsupported signing algorithm: %s", algorithm),
			goerrors.CategoryBadInput,
		)
	}

	ts := &TokenService{
		signingKey: signingKey,
		method:     method,
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts, nil
}

// Issue signs a token asserting the subject and email for ttl, discriminated
// by kind.
func (ts *TokenService) Issue(subject, email string, kind TokenKind, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", goerrors.New("subject must not be empty", goerrors.CategoryBadInput)
	}
	if ttl <= 0 {
		return "", goerrors.New("token TTL must be positive", goerrors.CategoryBadInput)
	}

	now := ts.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Kind:  kind,
	}

	token := jwt.NewWithClaims(ts.method, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// Verify parses the token, checks signature and expiry, and enforces the
// expected kind and the presence of a subject.
func (ts *TokenService) Verify(tokenString string, expected TokenKind) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(ts.now))

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token verify could not decode claims")
		return nil, ErrTokenMalformed
	}

	if claims.Subject() == "" {
		return nil, ErrTokenMissingSubject
	}

	if claims.Kind != expected {
		return nil, ErrTokenKindMismatch.Clone().WithMetadata(map[string]any{
			"expected": string(expected),
			"got":      string(claims.Kind),
		})
	}

	return claims, nil
}
