package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"club-control-plane/internal/db"
	"club-control-plane/internal/user/domain"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const userColumns = "id, email, name, status, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var name sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &name, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	return &u, nil
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := db.QuerierFrom(ctx, r.db)
	u, err := scanUser(q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := db.QuerierFrom(ctx, r.db)
	u, err := scanUser(q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Create persists the user. The user must have ID set; it is not assigned by
// this method. Maps the unique email violation to domain.ErrDuplicateEmail.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	q := db.QuerierFrom(ctx, r.db)
	name := sql.NullString{String: u.Name, Valid: u.Name != ""}
	_, err := q.ExecContext(ctx,
		"INSERT INTO users (id, email, name, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		u.ID, u.Email, name, u.Status, u.CreatedAt, u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateEmail
	}
	return err
}

// Delete removes the user record. Deleting a missing user is not an error;
// the caller has already verified existence under the cascade transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	q := db.QuerierFrom(ctx, r.db)
	_, err := q.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}
