package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telaris-erp/telaris/internal/authz"
	"github.com/telaris-erp/telaris/internal/shared"
)

// ProfileStore looks up the stored user profile backing an identity.
type ProfileStore interface {
	// FindProfile matches a profile by the verified provider subject,
	// falling back to the verified email. One lookup per resolution.
	FindProfile(ctx context.Context, subject, email string) (*Identity, error)
}

// PGProfileStore implements ProfileStore over the usuarios table.
type PGProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore constructs a PostgreSQL profile store.
func NewProfileStore(pool *pgxpool.Pool) *PGProfileStore {
	return &PGProfileStore{pool: pool}
}

// FindProfile fetches the profile row for the verified claims.
func (s *PGProfileStore) FindProfile(ctx context.Context, subject, email string) (*Identity, error) {
	var id Identity
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, nombre, rol, estado
		   FROM usuarios
		  WHERE (sujeto = $1 OR email = $2) AND eliminado_en IS NULL
		  LIMIT 1`,
		subject, email).Scan(&id.ID, &id.Email, &id.Name, &role, &id.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	id.Role = authz.Role(role)
	return &id, nil
}

var _ ProfileStore = (*PGProfileStore)(nil)
