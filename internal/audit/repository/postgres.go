package repository

import (
	"context"
	"database/sql"

	"club-control-plane/internal/audit/domain"
	"club-control-plane/internal/db"
)

type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	q := db.QuerierFrom(ctx, r.db)
	uid := sql.NullString{String: a.UserID, Valid: a.UserID != ""}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := q.ExecContext(ctx,
		"INSERT INTO audit_logs (id, club_id, user_id, action, resource, ip, metadata, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		a.ID, a.ClubID, uid, a.Action, a.Resource, a.IP, meta, a.CreatedAt)
	return err
}

// ListByClub returns audit logs for the given club, newest first, paginated
// by limit and offset. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByClub(ctx context.Context, clubID string, limit, offset int32) ([]*domain.AuditLog, error) {
	q := db.QuerierFrom(ctx, r.db)
	rows, err := q.QueryContext(ctx,
		"SELECT id, club_id, user_id, action, resource, ip, metadata, created_at FROM audit_logs WHERE club_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		clubID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var uid, meta sql.NullString
		if err := rows.Scan(&a.ID, &a.ClubID, &uid, &a.Action, &a.Resource, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UserID = uid.String
		a.Metadata = meta.String
		out = append(out, &a)
	}
	return out, rows.Err()
}
