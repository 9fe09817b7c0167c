package repository

import (
	"context"

	"club-control-plane/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// Delete removes the user record. Only the club lifecycle manager calls
	// this, after every club the user belongs to has been processed.
	Delete(ctx context.Context, id string) error
}
