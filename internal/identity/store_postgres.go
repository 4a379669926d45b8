// internal/identity/store_postgres.go
package identity

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			avatar_ref TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure profiles schema: %w", err)
	}
	return nil
}

func (d *PostgresDirectory) Profile(ctx context.Context, id string) (*Profile, error) {
	profile := &Profile{}
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, role, avatar_ref
		FROM profiles
		WHERE id = $1
	`, id).Scan(&profile.ID, &profile.Name, &profile.Role, &profile.AvatarRef)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (d *PostgresDirectory) Register(ctx context.Context, profile Profile) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, role, avatar_ref)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    role = EXCLUDED.role,
		    avatar_ref = EXCLUDED.avatar_ref
	`, profile.ID, profile.Name, profile.Role, profile.AvatarRef)
	if err != nil {
		return fmt.Errorf("register profile: %w", err)
	}
	return nil
}
