package service

import (
	"context"
	"fmt"

	mdomain "club-control-plane/internal/membership/domain"
)

// OwnershipTransferRequiredError blocks account deletion: the user owns a
// club that still has standing members (Members or Officers). The boundary
// must surface this explicitly, naming the blocking club, because the action
// required of the user (transfer ownership) is not obvious.
type OwnershipTransferRequiredError struct {
	ClubID string
}

func (e *OwnershipTransferRequiredError) Error() string {
	return fmt.Sprintf("ownership of club %s must be transferred before the account can be deleted", e.ClubID)
}

// LifecycleStore is the slice of the membership store the lifecycle manager needs.
type LifecycleStore interface {
	ListByUserForUpdate(ctx context.Context, userID string) ([]*mdomain.Membership, error)
	CountByClub(ctx context.Context, clubID string) (int64, error)
	CountByClubAndRole(ctx context.Context, clubID string, role mdomain.Role) (int64, error)
	Delete(ctx context.Context, userID, clubID string) error
	DeleteByClub(ctx context.Context, clubID string) error
}

// ClubDeleter deletes a club record.
type ClubDeleter interface {
	Delete(ctx context.Context, id string) error
}

// UserDeleter deletes a user record.
type UserDeleter interface {
	Delete(ctx context.Context, id string) error
}

// Lifecycle cascades account deletion through every club the user belongs
// to. It is the only component permitted to delete a club as a side effect
// of membership changes.
type Lifecycle struct {
	memberships LifecycleStore
	clubs       ClubDeleter
	users       UserDeleter
	tx          TxRunner
}

// NewLifecycle returns a lifecycle manager over the given stores.
func NewLifecycle(memberships LifecycleStore, clubs ClubDeleter, users UserDeleter, tx TxRunner) *Lifecycle {
	return &Lifecycle{memberships: memberships, clubs: clubs, users: users, tx: tx}
}

// DeleteAccount removes the user and every membership they hold, club by club:
//
//   - sole membership in the club: the club is deleted with it;
//   - owner with only applicants besides them: the club and its applicant
//     memberships are deleted;
//   - owner with at least one standing member besides them: the whole
//     deletion aborts with OwnershipTransferRequiredError and nothing is
//     deleted for any club;
//   - otherwise: just that one membership is deleted and the club persists.
//
// The entire cascade runs in one transaction, so a blocked club rolls back
// every deletion already performed for the user's other clubs.
func (l *Lifecycle) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete account: user id is required")
	}
	return l.tx.InTx(ctx, func(ctx context.Context) error {
		memberships, err := l.memberships.ListByUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		for _, m := range memberships {
			total, err := l.memberships.CountByClub(ctx, m.ClubID)
			if err != nil {
				return err
			}
			switch {
			case total == 1:
				if err := l.deleteClub(ctx, m.ClubID); err != nil {
					return err
				}
			case m.Role == mdomain.RoleOwner:
				applicants, err := l.memberships.CountByClubAndRole(ctx, m.ClubID, mdomain.RoleApplicant)
				if err != nil {
					return err
				}
				// The user is the owner, so everyone else is an applicant
				// exactly when applicants == total-1. Applicants have no
				// standing membership yet, so the club may be torn down.
				if applicants == total-1 {
					if err := l.deleteClub(ctx, m.ClubID); err != nil {
						return err
					}
				} else {
					return &OwnershipTransferRequiredError{ClubID: m.ClubID}
				}
			default:
				if err := l.memberships.Delete(ctx, userID, m.ClubID); err != nil {
					return err
				}
			}
		}
		return l.users.Delete(ctx, userID)
	})
}

func (l *Lifecycle) deleteClub(ctx context.Context, clubID string) error {
	if err := l.memberships.DeleteByClub(ctx, clubID); err != nil {
		return err
	}
	return l.clubs.Delete(ctx, clubID)
}
