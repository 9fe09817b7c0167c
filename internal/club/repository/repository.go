package repository

import (
	"context"

	"club-control-plane/internal/club/domain"
)

// Repository defines persistence for clubs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Club, error)
	GetByName(ctx context.Context, name string) (*domain.Club, error)
	List(ctx context.Context) ([]*domain.Club, error)
	Create(ctx context.Context, c *domain.Club) error
	// Delete removes the club record. Only the club lifecycle manager calls
	// this, as a side effect of membership changes.
	Delete(ctx context.Context, id string) error
}
