package profile

import (
	"context"

	"github.com/uptrace/bun"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS users (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT,
    full_name TEXT,
    phone TEXT,
    avatar_url TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`

// EnsureSchema creates the profile table when it does not exist. Deployments
// backed by a managed database with its own migrations can skip this.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}
