package rbac

import (
	"context"

	"club-control-plane/internal/membership/domain"
)

// Tier is the linear capability order used only for request gating:
// Applicant < Member < Officer < Owner. Transition preconditions never use
// tiers; they compare exact roles.
type Tier int

const (
	TierApplicant Tier = iota + 1
	TierMember
	TierOfficer
	TierOwner
)

// TierForRole maps a role to its gating tier.
func TierForRole(r domain.Role) Tier {
	switch r {
	case domain.RoleApplicant:
		return TierApplicant
	case domain.RoleMember:
		return TierMember
	case domain.RoleOfficer:
		return TierOfficer
	case domain.RoleOwner:
		return TierOwner
	}
	return 0
}

// Decision is the guard's verdict for one request: allow, or deny with the
// location the router should send the user to instead.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Redirect destinations used by the guard and the transition engine.
func ClubsPath() string { return "/v1/clubs" }

func WaitingPath(clubID string) string { return "/v1/clubs/" + clubID + "/waiting" }

func MembersPath(clubID string) string { return "/v1/clubs/" + clubID + "/members" }

func ApplicantsPath(clubID string) string { return "/v1/clubs/" + clubID + "/applicants" }

// tierArea is the listing a user of the given tier lands on when turned away.
func tierArea(clubID string, t Tier) string {
	switch t {
	case TierApplicant:
		return WaitingPath(clubID)
	case TierMember:
		return MembersPath(clubID)
	case TierOfficer:
		return ApplicantsPath(clubID)
	case TierOwner:
		return MembersPath(clubID)
	}
	return ClubsPath()
}

// RequireTier decides whether the user may access a resource gated at the
// required tier. Users with no membership are sent to the clubs index; users
// below the required tier are sent to the area of the highest tier at or
// below required-1 that they qualify for.
func RequireTier(ctx context.Context, g MembershipGetter, userID, clubID string, required Tier) (Decision, error) {
	role, ok, err := RoleOf(ctx, g, userID, clubID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{Allowed: false, Redirect: ClubsPath()}, nil
	}
	have := TierForRole(role)
	if have >= required {
		return Decision{Allowed: true}, nil
	}
	for t := required - 1; t >= TierApplicant; t-- {
		if have >= t {
			return Decision{Allowed: false, Redirect: tierArea(clubID, t)}, nil
		}
	}
	return Decision{Allowed: false, Redirect: ClubsPath()}, nil
}
