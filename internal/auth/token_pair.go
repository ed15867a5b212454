package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// TokenPair is an access/refresh pair minted for one authenticated identity.
// Issuing a pair never invalidates previously issued tokens; validity is a
// pure function of signature and expiry.
type TokenPair struct {
	AccessToken      string
	AccessExpiresIn  int
	RefreshToken     string
	RefreshExpiresIn int
}

// PairIssuer derives token pairs from the codec. Access and refresh TTLs are
// independent configuration values.
type PairIssuer struct {
	tokens     *TokenService
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewPairIssuer creates a PairIssuer with the given TTLs.
func NewPairIssuer(tokens *TokenService, accessTTL, refreshTTL time.Duration) (*PairIssuer, error) {
	if tokens == nil {
		return nil, goerrors.New("token service is required", goerrors.CategoryBadInput)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, goerrors.New("token TTLs must be positive", goerrors.CategoryBadInput)
	}

	return &PairIssuer{
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssuePair mints both tokens for the identity.
func (p *PairIssuer) IssuePair(subject, email string) (*TokenPair, error) {
	access, err := p.tokens.Issue(subject, email, TokenKindAccess, p.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := p.tokens.Issue(subject, email, TokenKindRefresh, p.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		AccessExpiresIn:  int(p.accessTTL / time.Second),
		RefreshToken:     refresh,
		RefreshExpiresIn: int(p.refreshTTL / time.Second),
	}, nil
}
