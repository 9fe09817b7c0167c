package domain

import (
	"errors"
	"time"
)

// Membership binds one user to one club with exactly one role.
// At most one membership exists per (user, club) pair.
type Membership struct {
	ID        string
	UserID    string
	ClubID    string
	Role      Role
	CreatedAt time.Time
}

// Role is the club-scoped authorization level a user holds in one club.
// Role checks for transition eligibility are exact-match: an Owner is not
// "also an Officer" anywhere outside the Access Guard's tier ordering.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleMember    Role = "member"
	RoleOfficer   Role = "officer"
	RoleOwner     Role = "owner"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleMember, RoleOfficer, RoleOwner:
		return true
	}
	return false
}

// Sentinel errors returned by the membership store.
var (
	// ErrDuplicateMembership is returned by Create when a membership already
	// exists for the (user, club) pair. Callers surface it as a benign
	// "already applied" outcome, not a failure.
	ErrDuplicateMembership = errors.New("membership already exists for user and club")
	// ErrMembershipNotFound is returned by SetRole and Delete when no
	// membership exists for the (user, club) pair.
	ErrMembershipNotFound = errors.New("membership not found")
)
