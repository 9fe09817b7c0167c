// Package service holds club creation/listing and the lifecycle manager that
// cascades account deletion through a user's clubs.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"club-control-plane/internal/club/domain"
	mdomain "club-control-plane/internal/membership/domain"
	"club-control-plane/internal/platform/rbac"
)

// ClubRepo is the slice of the club repository the service needs.
type ClubRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Club, error)
	List(ctx context.Context) ([]*domain.Club, error)
	Create(ctx context.Context, c *domain.Club) error
}

// MembershipStore is the slice of the membership store the service needs.
type MembershipStore interface {
	Create(ctx context.Context, m *mdomain.Membership) error
	ListByUser(ctx context.Context, userID string) ([]*mdomain.Membership, error)
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service creates and lists clubs.
type Service struct {
	clubs       ClubRepo
	memberships MembershipStore
	tx          TxRunner
}

// NewService returns a club service over the given repositories.
func NewService(clubs ClubRepo, memberships MembershipStore, tx TxRunner) *Service {
	return &Service{clubs: clubs, memberships: memberships, tx: tx}
}

// CreateClub creates a club and grants the creator the founding Owner
// membership in the same transaction. Returns domain.ErrDuplicateClubName if
// the name is taken.
func (s *Service) CreateClub(ctx context.Context, ownerID, name, description, address string) (*domain.Club, error) {
	club := &domain.Club{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Address:     address,
		CreatedAt:   time.Now().UTC(),
	}
	if err := club.Validate(); err != nil {
		return nil, err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.clubs.Create(ctx, club); err != nil {
			return err
		}
		return s.memberships.Create(ctx, &mdomain.Membership{
			ID:        uuid.New().String(),
			UserID:    ownerID,
			ClubID:    club.ID,
			Role:      mdomain.RoleOwner,
			CreatedAt: club.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return club, nil
}

// GetClub returns the club for id, or nil if not found.
func (s *Service) GetClub(ctx context.Context, id string) (*domain.Club, error) {
	return s.clubs.GetByID(ctx, id)
}

// ListClubs returns all clubs.
func (s *Service) ListClubs(ctx context.Context) ([]*domain.Club, error) {
	return s.clubs.List(ctx)
}

// MyClubs returns the clubs where the user holds any membership.
func (s *Service) MyClubs(ctx context.Context, userID string) ([]*domain.Club, error) {
	return rbac.MyClubs(ctx, s.memberships, s.clubs, userID)
}

// OtherClubs returns the clubs where the user holds no membership.
func (s *Service) OtherClubs(ctx context.Context, userID string) ([]*domain.Club, error) {
	return rbac.OtherClubs(ctx, s.memberships, s.clubs, userID)
}
