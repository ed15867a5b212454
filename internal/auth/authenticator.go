package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"

	"github.com/cronoplan/cronoplan-api/internal/profile"
)

// AuthSession is the outcome of a successful session flow: a freshly minted
// token pair plus the resolved (possibly synthesized) profile.
type AuthSession struct {
	Pair    *TokenPair
	Profile *profile.Profile
	Email   string
}

// Auther orchestrates the session flows. Credentials are always checked by
// the external CredentialVerifier; session tokens are always minted locally.
// The two trust domains never call into each other.
type Auther struct {
	verifier       CredentialVerifier
	providerTokens ProviderTokenVerifier
	reconciler     *Reconciler
	issuer         *PairIssuer
	profiles       ProfileStore
	logger         Logger
}

// NewAuther wires the session flows.
func NewAuther(verifier CredentialVerifier, reconciler *Reconciler, issuer *PairIssuer, profiles ProfileStore) *Auther {
	return &Auther{
		verifier:   verifier,
		reconciler: reconciler,
		issuer:     issuer,
		profiles:   profiles,
		logger:     defLogger{},
	}
}

// WithLogger overrides the fallback logger.
func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithProviderTokenVerifier enables the external OAuth login flow.
func (a *Auther) WithProviderTokenVerifier(verifier ProviderTokenVerifier) *Auther {
	a.providerTokens = verifier
	return a
}

// Register creates a new identity upstream, reconciles its profile with the
// supplied hints, and mints a token pair.
func (a *Auther) Register(ctx context.Context, email, password string, hints ProfileHints) (*AuthSession, error) {
	hints.Phone = NormalizePhone(hints.Phone)

	identity, err := a.verifier.SignUp(ctx, email, password, SignUpData{
		FullName: hints.FullName,
		Phone:    hints.Phone,
	})
	if err != nil {
		a.logger.Error("register sign up rejected", "email", email, "error", err)
		return nil, err
	}

	return a.establishSession(ctx, identity, hints)
}

// Login verifies credentials upstream and mints a token pair. The profile is
// resolved through the tolerant reconciler path: a row still propagating from
// the identity provider must not block the login.
func (a *Auther) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	identity, err := a.verifier.SignIn(ctx, email, password)
	if err != nil {
		a.logger.Info("login rejected", "email", email)
		return nil, err
	}

	return a.establishSession(ctx, identity, ProfileHints{
		FullName:  identity.FullName,
		Phone:     identity.Phone,
		AvatarURL: identity.AvatarURL,
	})
}

// Refresh verifies a refresh-kind token, re-resolves the profile, and mints a
// fresh pair. Both tokens are replaced; the old refresh token stays valid
// until its own expiry (stateless design, known limitation).
func (a *Auther) Refresh(ctx context.Context, refreshToken string) (*AuthSession, error) {
	claims, err := a.issuer.tokens.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	identity := &ExternalIdentity{
		ID:    claims.Subject(),
		Email: claims.Email,
	}

	return a.establishSession(ctx, identity, ProfileHints{})
}

// LoginWithIDToken accepts a provider issued identity token, delegates
// verification, and opportunistically refreshes name/avatar from the provider
// metadata before minting a pair.
func (a *Auther) LoginWithIDToken(ctx context.Context, idToken string) (*AuthSession, error) {
	if a.providerTokens == nil {
		return nil, goerrors.New("no identity token provider configured", goerrors.CategoryInternal)
	}

	identity, err := a.providerTokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		a.logger.Info("provider token rejected", "error", err)
		return nil, err
	}

	session, err := a.establishSession(ctx, identity, ProfileHints{
		FullName:  identity.FullName,
		AvatarURL: identity.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	a.syncProviderMetadata(ctx, session, identity)

	return session, nil
}

// UpdateProfile applies a partial update to the caller's own profile. Phone
// numbers are normalized to E.164 when they parse.
func (a *Auther) UpdateProfile(ctx context.Context, subject string, changes profile.Changes) (*profile.Profile, error) {
	if changes.Phone != nil {
		normalized := NormalizePhone(*changes.Phone)
		changes.Phone = &normalized
	}

	updated, err := a.profiles.Update(ctx, subject, changes)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrProfileNotFound.Clone().WithMetadata(map[string]any{
				"subject": subject,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "profile update failed")
	}

	return updated, nil
}

func (a *Auther) establishSession(ctx context.Context, identity *ExternalIdentity, hints ProfileHints) (*AuthSession, error) {
	if identity == nil || identity.ID == "" {
		return nil, goerrors.New("identity provider returned no identity", goerrors.CategoryInternal)
	}

	record := a.reconciler.GetOrCreate(ctx, identity.ID, identity.Email, hints)

	pair, err := a.issuer.IssuePair(identity.ID, identity.Email)
	if err != nil {
		return nil, err
	}

	if record.Email == "" {
		record.Email = identity.Email
	}

	return &AuthSession{
		Pair:    pair,
		Profile: record,
		Email:   identity.Email,
	}, nil
}

// syncProviderMetadata pushes changed provider name/avatar into the profile
// row. Failures are logged, never surfaced: the session is already valid.
func (a *Auther) syncProviderMetadata(ctx context.Context, session *AuthSession, identity *ExternalIdentity) {
	if session.Profile.Synthesized {
		return
	}

	changes := profile.Changes{}
	if identity.FullName != "" && identity.FullName != session.Profile.FullName {
		changes.FullName = &identity.FullName
	}
	if identity.AvatarURL != "" && identity.AvatarURL != session.Profile.AvatarURL {
		changes.AvatarURL = &identity.AvatarURL
	}

	if changes.IsEmpty() {
		return
	}

	updated, err := a.profiles.Update(ctx, identity.ID, changes)
	if err != nil {
		a.logger.Warn("provider metadata sync failed", "identity", identity.ID, "error", err)
		return
	}

	session.Profile = updated
}
