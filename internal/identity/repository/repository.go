package repository

import (
	"context"

	"club-control-plane/internal/identity/domain"
)

// Repository defines persistence for identities.
type Repository interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error)
	Create(ctx context.Context, i *domain.Identity) error
}

// Identities are deleted by the users FK cascade when an account is removed;
// no explicit delete is exposed here.
