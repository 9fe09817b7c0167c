package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"club-control-plane/internal/club/domain"
	"club-control-plane/internal/db"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository returns a club repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const clubColumns = "id, name, description, address, created_at"

func scanClub(row interface{ Scan(...any) error }) (*domain.Club, error) {
	var c domain.Club
	var desc, addr sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &desc, &addr, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.Address = addr.String
	return &c, nil
}

// GetByID returns the club for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Club, error) {
	q := db.QuerierFrom(ctx, r.db)
	c, err := scanClub(q.QueryRowContext(ctx,
		"SELECT "+clubColumns+" FROM clubs WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// GetByName returns the club with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Club, error) {
	q := db.QuerierFrom(ctx, r.db)
	c, err := scanClub(q.QueryRowContext(ctx,
		"SELECT "+clubColumns+" FROM clubs WHERE name = $1", name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// List returns all clubs ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Club, error) {
	q := db.QuerierFrom(ctx, r.db)
	rows, err := q.QueryContext(ctx, "SELECT "+clubColumns+" FROM clubs ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create persists the club. The club must have ID set.
// Maps the unique name violation to domain.ErrDuplicateClubName.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Club) error {
	q := db.QuerierFrom(ctx, r.db)
	desc := sql.NullString{String: c.Description, Valid: c.Description != ""}
	addr := sql.NullString{String: c.Address, Valid: c.Address != ""}
	_, err := q.ExecContext(ctx,
		"INSERT INTO clubs (id, name, description, address, created_at) VALUES ($1, $2, $3, $4, $5)",
		c.ID, c.Name, desc, addr, c.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateClubName
	}
	return err
}

// Delete removes the club record. Returns domain.ErrClubNotFound when no row matches.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	q := db.QuerierFrom(ctx, r.db)
	res, err := q.ExecContext(ctx, "DELETE FROM clubs WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrClubNotFound
	}
	return nil
}
