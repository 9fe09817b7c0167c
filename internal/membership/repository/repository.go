package repository

import (
	"context"

	"club-control-plane/internal/membership/domain"
)

// Repository is the membership store: a keyed (user, club) → membership map
// with no business validation. The transition engine is the only writer of
// the role column; the lifecycle manager is the only caller of DeleteByClub.
type Repository interface {
	// GetByUserAndClub returns the membership for the pair, or nil if none.
	// It returns an error only for database failures, not for missing rows.
	GetByUserAndClub(ctx context.Context, userID, clubID string) (*domain.Membership, error)
	// GetByUserAndClubForUpdate is GetByUserAndClub with an exclusive row
	// lock. Must be called inside a transaction; the lock serializes
	// concurrent transitions on the same membership.
	GetByUserAndClubForUpdate(ctx context.Context, userID, clubID string) (*domain.Membership, error)
	// Create persists the membership. Returns domain.ErrDuplicateMembership
	// if the (user, club) pair already has one.
	Create(ctx context.Context, m *domain.Membership) error
	// SetRole updates the role for the pair. Returns domain.ErrMembershipNotFound
	// if no membership exists.
	SetRole(ctx context.Context, userID, clubID string, role domain.Role) error
	// Delete removes the membership for the pair. Returns
	// domain.ErrMembershipNotFound if no membership exists.
	Delete(ctx context.Context, userID, clubID string) error
	// DeleteByClub removes every membership of the club.
	DeleteByClub(ctx context.Context, clubID string) error
	// CountByClub returns the number of memberships of any role in the club.
	CountByClub(ctx context.Context, clubID string) (int64, error)
	// CountByClubAndRole returns the number of memberships with exactly the given role.
	CountByClubAndRole(ctx context.Context, clubID string, role domain.Role) (int64, error)
	// ListByClub returns all memberships in the club.
	ListByClub(ctx context.Context, clubID string) ([]*domain.Membership, error)
	// ListByClubAndRole returns the club's memberships with exactly the given role.
	ListByClubAndRole(ctx context.Context, clubID string, role domain.Role) ([]*domain.Membership, error)
	// ListByUser returns all of the user's memberships across clubs.
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	// ListByUserForUpdate is ListByUser with exclusive row locks; must be
	// called inside a transaction. Used by the account-deletion cascade.
	ListByUserForUpdate(ctx context.Context, userID string) ([]*domain.Membership, error)
}
