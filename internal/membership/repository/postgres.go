package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"club-control-plane/internal/db"
	"club-control-plane/internal/membership/domain"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository returns a membership store backed by the given db.
// Methods pick up the transaction carried on the context, if any.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const membershipColumns = "id, user_id, club_id, role, created_at"

func scanMembership(row interface{ Scan(...any) error }) (*domain.Membership, error) {
	var m domain.Membership
	if err := row.Scan(&m.ID, &m.UserID, &m.ClubID, &m.Role, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByUserAndClub returns the membership for the pair, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndClub(ctx context.Context, userID, clubID string) (*domain.Membership, error) {
	q := db.QuerierFrom(ctx, r.db)
	m, err := scanMembership(q.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = $1 AND club_id = $2",
		userID, clubID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// GetByUserAndClubForUpdate locks and returns the membership for the pair, or
// nil if not found. Must run inside a transaction.
func (r *PostgresRepository) GetByUserAndClubForUpdate(ctx context.Context, userID, clubID string) (*domain.Membership, error) {
	q := db.QuerierFrom(ctx, r.db)
	m, err := scanMembership(q.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = $1 AND club_id = $2 FOR UPDATE",
		userID, clubID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Create persists the membership. The membership must have ID set.
// Maps the unique (user_id, club_id) violation to domain.ErrDuplicateMembership.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	q := db.QuerierFrom(ctx, r.db)
	_, err := q.ExecContext(ctx,
		"INSERT INTO memberships (id, user_id, club_id, role, created_at) VALUES ($1, $2, $3, $4, $5)",
		m.ID, m.UserID, m.ClubID, m.Role, m.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateMembership
	}
	return err
}

// SetRole updates the role for the pair. Returns domain.ErrMembershipNotFound
// when no row matches.
func (r *PostgresRepository) SetRole(ctx context.Context, userID, clubID string, role domain.Role) error {
	q := db.QuerierFrom(ctx, r.db)
	res, err := q.ExecContext(ctx,
		"UPDATE memberships SET role = $1 WHERE user_id = $2 AND club_id = $3",
		role, userID, clubID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// Delete removes the membership for the pair. Returns domain.ErrMembershipNotFound
// when no row matches.
func (r *PostgresRepository) Delete(ctx context.Context, userID, clubID string) error {
	q := db.QuerierFrom(ctx, r.db)
	res, err := q.ExecContext(ctx,
		"DELETE FROM memberships WHERE user_id = $1 AND club_id = $2", userID, clubID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

// DeleteByClub removes every membership of the club. Deleting zero rows is not an error.
func (r *PostgresRepository) DeleteByClub(ctx context.Context, clubID string) error {
	q := db.QuerierFrom(ctx, r.db)
	_, err := q.ExecContext(ctx, "DELETE FROM memberships WHERE club_id = $1", clubID)
	return err
}

// CountByClub returns the number of memberships of any role in the club.
func (r *PostgresRepository) CountByClub(ctx context.Context, clubID string) (int64, error) {
	q := db.QuerierFrom(ctx, r.db)
	var n int64
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memberships WHERE club_id = $1", clubID).Scan(&n)
	return n, err
}

// CountByClubAndRole returns the number of memberships with exactly the given role.
func (r *PostgresRepository) CountByClubAndRole(ctx context.Context, clubID string, role domain.Role) (int64, error) {
	q := db.QuerierFrom(ctx, r.db)
	var n int64
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memberships WHERE club_id = $1 AND role = $2", clubID, role).Scan(&n)
	return n, err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Membership, error) {
	q := db.QuerierFrom(ctx, r.db)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListByClub returns all memberships in the club.
func (r *PostgresRepository) ListByClub(ctx context.Context, clubID string) ([]*domain.Membership, error) {
	return r.list(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE club_id = $1 ORDER BY created_at", clubID)
}

// ListByClubAndRole returns the club's memberships with exactly the given role.
func (r *PostgresRepository) ListByClubAndRole(ctx context.Context, clubID string, role domain.Role) ([]*domain.Membership, error) {
	return r.list(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE club_id = $1 AND role = $2 ORDER BY created_at",
		clubID, role)
}

// ListByUser returns all of the user's memberships across clubs.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return r.list(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = $1 ORDER BY created_at", userID)
}

// ListByUserForUpdate locks and returns all of the user's memberships.
// Must run inside a transaction.
func (r *PostgresRepository) ListByUserForUpdate(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return r.list(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE user_id = $1 ORDER BY created_at FOR UPDATE", userID)
}
