// Package rbac answers role queries for one user in one club and gates
// request access by capability tier. Role predicates are exact-match; the
// tier ordering exists only for gating and is never used to decide
// transition eligibility.
package rbac

import (
	"context"

	clubdomain "club-control-plane/internal/club/domain"
	"club-control-plane/internal/membership/domain"
)

// MembershipGetter returns a user's membership in a club. nil means no membership.
type MembershipGetter interface {
	GetByUserAndClub(ctx context.Context, userID, clubID string) (*domain.Membership, error)
}

// MembershipLister returns all of a user's memberships across clubs.
type MembershipLister interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
}

// ClubLister returns all clubs on the platform.
type ClubLister interface {
	List(ctx context.Context) ([]*clubdomain.Club, error)
}

// RoleOf returns the role the user holds in the club, and false when the user
// is anonymous or has no membership there.
func RoleOf(ctx context.Context, g MembershipGetter, userID, clubID string) (domain.Role, bool, error) {
	if userID == "" {
		return "", false, nil
	}
	m, err := g.GetByUserAndClub(ctx, userID, clubID)
	if err != nil {
		return "", false, err
	}
	if m == nil {
		return "", false, nil
	}
	return m.Role, true, nil
}

func hasExactRole(ctx context.Context, g MembershipGetter, userID, clubID string, want domain.Role) (bool, error) {
	role, ok, err := RoleOf(ctx, g, userID, clubID)
	if err != nil || !ok {
		return false, err
	}
	return role == want, nil
}

// IsApplicant reports whether the user's role in the club is exactly Applicant.
func IsApplicant(ctx context.Context, g MembershipGetter, userID, clubID string) (bool, error) {
	return hasExactRole(ctx, g, userID, clubID, domain.RoleApplicant)
}

// IsMember reports whether the user's role in the club is exactly Member.
// Officers and Owners are not Members for this predicate.
func IsMember(ctx context.Context, g MembershipGetter, userID, clubID string) (bool, error) {
	return hasExactRole(ctx, g, userID, clubID, domain.RoleMember)
}

// IsOfficer reports whether the user's role in the club is exactly Officer.
func IsOfficer(ctx context.Context, g MembershipGetter, userID, clubID string) (bool, error) {
	return hasExactRole(ctx, g, userID, clubID, domain.RoleOfficer)
}

// IsOwner reports whether the user's role in the club is exactly Owner.
func IsOwner(ctx context.Context, g MembershipGetter, userID, clubID string) (bool, error) {
	return hasExactRole(ctx, g, userID, clubID, domain.RoleOwner)
}

// MyClubs returns the clubs where the user holds any membership.
func MyClubs(ctx context.Context, memberships MembershipLister, clubs ClubLister, userID string) ([]*clubdomain.Club, error) {
	if userID == "" {
		return nil, nil
	}
	mine, err := memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	member := make(map[string]bool, len(mine))
	for _, m := range mine {
		member[m.ClubID] = true
	}
	all, err := clubs.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*clubdomain.Club
	for _, c := range all {
		if member[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// OtherClubs returns the clubs where the user holds no membership:
// the complement of MyClubs over all clubs.
func OtherClubs(ctx context.Context, memberships MembershipLister, clubs ClubLister, userID string) ([]*clubdomain.Club, error) {
	var member map[string]bool
	if userID != "" {
		mine, err := memberships.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		member = make(map[string]bool, len(mine))
		for _, m := range mine {
			member[m.ClubID] = true
		}
	}
	all, err := clubs.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*clubdomain.Club
	for _, c := range all {
		if !member[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}
