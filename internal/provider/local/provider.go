// Package local is an in-process CredentialVerifier for development and
// tests: credentials live in a bun table with bcrypt hashes and identity ids
// are derived deterministically from the email. It mirrors the typed error
// surface of the real provider so the rest of the system cannot tell the
// difference. Not intended for production.
package local

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/cronoplan/cronoplan-api/internal/auth"
)

const bcryptCost = 12

const schemaSQL = `CREATE TABLE IF NOT EXISTS credentials (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name TEXT,
    phone TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// Credential is the stored identity record.
type Credential struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`

	ID           uuid.UUID  `bun:"id,pk,nullzero,type:uuid"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash string     `bun:"password_hash,notnull"`
	FullName     string     `bun:"full_name"`
	Phone        string     `bun:"phone"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// Provider implements auth.CredentialVerifier on a local table.
type Provider struct {
	db     *bun.DB
	logger auth.Logger
}

var _ auth.CredentialVerifier = (*Provider)(nil)

// New creates a Provider.
func New(db *bun.DB) *Provider {
	return &Provider{
		db:     db,
		logger: auth.DefaultLogger(),
	}
}

// WithLogger overrides the fallback logger.
func (p *Provider) WithLogger(logger auth.Logger) *Provider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// EnsureSchema creates the credentials table when it does not exist.
func (p *Provider) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schemaSQL)
	return err
}

// SignUp registers a new identity. Email collisions map to
// auth.ErrAlreadyRegistered like the real provider.
func (p *Provider) SignUp(ctx context.Context, email, password string, data auth.SignUpData) (*auth.ExternalIdentity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, auth.ErrInvalidEmail
	}
	if password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	if _, err := p.findByEmail(ctx, email); err == nil {
		return nil, auth.ErrAlreadyRegistered
	} else if !goerrors.Is(err, sql.ErrNoRows) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing credential")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	id, err := hashid.NewUUID(email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to derive identity id")
	}

	record := &Credential{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     data.FullName,
		Phone:        data.Phone,
	}

	if _, err := p.db.NewInsert().Model(record).Exec(ctx); err != nil {
		// Two concurrent signups for one email race on the unique index; the
		// loser reports a collision just like the real provider would.
		if _, ferr := p.findByEmail(ctx, email); ferr == nil {
			return nil, auth.ErrAlreadyRegistered
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store credential")
	}

	return p.identity(record), nil
}

// SignIn verifies the password. Unknown email and wrong password both return
// auth.ErrInvalidCredentials.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*auth.ExternalIdentity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	record, err := p.findByEmail(ctx, email)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load credential")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return p.identity(record), nil
}

func (p *Provider) findByEmail(ctx context.Context, email string) (*Credential, error) {
	record := &Credential{}
	err := p.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Provider) identity(record *Credential) *auth.ExternalIdentity {
	return &auth.ExternalIdentity{
		ID:       record.ID.String(),
		Email:    record.Email,
		FullName: record.FullName,
		Phone:    record.Phone,
	}
}
