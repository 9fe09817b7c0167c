package repository

import (
	"context"
	"database/sql"
	"errors"

	"club-control-plane/internal/db"
	"club-control-plane/internal/identity/domain"
)

type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository returns an identity repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByUserAndProvider returns the identity for the user and provider, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error) {
	q := db.QuerierFrom(ctx, r.db)
	var i domain.Identity
	var hash sql.NullString
	err := q.QueryRowContext(ctx,
		"SELECT id, user_id, provider, provider_id, password_hash, created_at FROM identities WHERE user_id = $1 AND provider = $2",
		userID, provider).Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderID, &hash, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	i.PasswordHash = hash.String
	return &i, nil
}

// Create persists the identity. The identity must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, i *domain.Identity) error {
	q := db.QuerierFrom(ctx, r.db)
	hash := sql.NullString{String: i.PasswordHash, Valid: i.PasswordHash != ""}
	_, err := q.ExecContext(ctx,
		"INSERT INTO identities (id, user_id, provider, provider_id, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		i.ID, i.UserID, i.Provider, i.ProviderID, hash, i.CreatedAt)
	return err
}
