package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is the locally owned user record, keyed by the identity provider's
// user id. Rows are created either by an upstream trigger when the identity
// is confirmed, or by the reconciler on first authentication.
type Profile struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Email     string     `bun:"email" json:"email,omitempty"`
	FullName  string     `bun:"full_name" json:"full_name,omitempty"`
	Phone     string     `bun:"phone" json:"phone,omitempty"`
	AvatarURL string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	// Synthesized marks a profile assembled in memory after the store was
	// unavailable. It is never persisted and never serialized.
	Synthesized bool `bun:"-" json:"-"`
}

// Changes describes a partial profile update. Nil fields are left untouched.
type Changes struct {
	FullName  *string
	Phone     *string
	AvatarURL *string
}

// IsEmpty reports whether the update would touch no columns.
func (c Changes) IsEmpty() bool {
	return c.FullName == nil && c.Phone == nil && c.AvatarURL == nil
}
