package auth

import (
	"context"
	"fmt"

	"github.com/cronoplan/cronoplan-api/internal/profile"
)

// Logger is the minimal logging surface the auth subsystem needs.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// ExternalIdentity is the principal the identity provider vouches for. The
// provider owns credentials; we only ever see the opaque id, the email, and
// whatever profile metadata the provider shares.
type ExternalIdentity struct {
	ID        string
	Email     string
	FullName  string
	Phone     string
	AvatarURL string
}

// SignUpData carries optional profile metadata handed to the provider at
// registration time.
type SignUpData struct {
	FullName string
	Phone    string
}

// CredentialVerifier is the external identity provider: it owns password
// hashing and credential checks. Implementations must return the typed errors
// from this package (ErrAlreadyRegistered, ErrInvalidCredentials, ...) so the
// flows never have to inspect error text.
type CredentialVerifier interface {
	SignUp(ctx context.Context, email, password string, data SignUpData) (*ExternalIdentity, error)
	SignIn(ctx context.Context, email, password string) (*ExternalIdentity, error)
}

// ProviderTokenVerifier validates identity tokens minted by an external OAuth
// provider (Google) and extracts profile hints from their claims.
type ProviderTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

// ProfileStore is the profile table surface consumed by the reconciler and
// the auth gate.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
	Create(ctx context.Context, record *profile.Profile) (*profile.Profile, error)
	Update(ctx context.Context, id string, changes profile.Changes) (*profile.Profile, error)
}

// DefaultLogger returns the fallback printf logger used when none is injected.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
