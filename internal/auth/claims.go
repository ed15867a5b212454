package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the two session token flavors. Access tokens
// authenticate regular requests; refresh tokens are only accepted when
// minting a new pair.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// SessionClaims is the signed claim set carried by both token kinds:
// {sub, email, iat, exp, type}. Tokens are self contained; nothing is
// persisted server side.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string    `json:"email,omitempty"`
	Kind  TokenKind `json:"type,omitempty"`
}

// Subject returns the identity id the token asserts.
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time.
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
