package profile

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the storage surface the auth subsystem depends on.
type Profiles interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, record *Profile) (*Profile, error)
	Update(ctx context.Context, id string, changes Changes) (*Profile, error)
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var _ Profiles = (*profiles)(nil)

// NewRepository builds a bun backed Profiles repository.
func NewRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

// GetByID reads a profile by its identity id. Absent rows surface as a
// record-not-found error distinguishable via errors.IsNotFound.
func (p *profiles) GetByID(ctx context.Context, id string) (*Profile, error) {
	record, err := p.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, translateReadError(err, id)
	}
	return record, nil
}

// Create inserts the record. Concurrent first logins for the same identity may
// both attempt the insert; the losing attempt resolves the unique constraint
// violation by re-reading the winner's row.
func (p *profiles) Create(ctx context.Context, record *Profile) (*Profile, error) {
	created, err := p.Repository.CreateTx(ctx, p.db, record)
	if err != nil {
		if record != nil && record.ID != uuid.Nil {
			if existing, rerr := p.Repository.GetByID(ctx, record.ID.String()); rerr == nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return created, nil
}

// Update applies a partial update and returns the fresh row.
func (p *profiles) Update(ctx context.Context, id string, changes Changes) (*Profile, error) {
	if changes.IsEmpty() {
		return p.GetByID(ctx, id)
	}

	q := p.db.NewUpdate().
		Model((*Profile)(nil)).
		Where("?TableAlias.id = ?", id).
		Set("updated_at = ?", time.Now())

	if changes.FullName != nil {
		q.Set("full_name = ?", *changes.FullName)
	}
	if changes.Phone != nil {
		q.Set("phone = ?", *changes.Phone)
	}
	if changes.AvatarURL != nil {
		q.Set("avatar_url = ?", *changes.AvatarURL)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, notFoundError(id)
	}

	return p.GetByID(ctx, id)
}

func notFoundError(id string) error {
	return goerrors.New("profile record not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{
			"id": id,
		})
}

// translateReadError maps the raw not-found signals from the repository layer
// (bun surfaces sql.ErrNoRows) onto the rich taxonomy so callers can branch
// on errors.IsNotFound.
func translateReadError(err error, id string) error {
	if repository.IsRecordNotFound(err) || goerrors.Is(err, sql.ErrNoRows) {
		return notFoundError(id)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read profile")
}
