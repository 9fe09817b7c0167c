package repository

import (
	"context"

	"club-control-plane/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByClub(ctx context.Context, clubID string, limit, offset int32) ([]*domain.AuditLog, error)
}
