// Package service implements the role transition engine: every role change in
// a club goes through Execute, which validates the actor's and target's
// current roles under row locks and applies the change in one transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	clubdomain "club-control-plane/internal/club/domain"
	"club-control-plane/internal/membership/domain"
	"club-control-plane/internal/platform/rbac"
)

// Transition names a validated role change.
type Transition string

const (
	TransitionApply             Transition = "apply"
	TransitionApprove           Transition = "approve"
	TransitionReject            Transition = "reject"
	TransitionPromote           Transition = "promote"
	TransitionDemote            Transition = "demote"
	TransitionRemove            Transition = "remove"
	TransitionTransferOwnership Transition = "transfer_ownership"
	TransitionLeave             Transition = "leave"
)

// Status classifies a transition outcome. Precondition failures are a normal
// negative-path status, not an error: the store is untouched and the caller
// redirects.
type Status string

const (
	StatusApplied        Status = "applied"
	StatusNotActionable  Status = "not_actionable"
	StatusAlreadyApplied Status = "already_applied"
)

// Severity grades the message emitted to the notification sink.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Result is the outcome of one Execute call. Redirect is the location the
// request router sends the actor to, for both applied and not-actionable
// outcomes. MessageKey identifies the human-readable copy; the engine never
// owns presentation text.
type Result struct {
	Status     Status
	Severity   Severity
	MessageKey string
	Redirect   string
}

// Applied reports whether the transition mutated the store.
func (r *Result) Applied() bool { return r.Status == StatusApplied }

// Store is the slice of the membership store the engine needs. All calls made
// by Execute run inside the transaction supplied by the TxRunner.
type Store interface {
	GetByUserAndClubForUpdate(ctx context.Context, userID, clubID string) (*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	SetRole(ctx context.Context, userID, clubID string, role domain.Role) error
	Delete(ctx context.Context, userID, clubID string) error
}

// ClubGetter resolves a club by id. nil means the club does not exist.
type ClubGetter interface {
	GetByID(ctx context.Context, id string) (*clubdomain.Club, error)
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Engine executes role transitions against the membership store.
type Engine struct {
	store Store
	clubs ClubGetter
	tx    TxRunner
}

// NewEngine returns an Engine over the given store and transaction runner.
func NewEngine(store Store, clubs ClubGetter, tx TxRunner) *Engine {
	return &Engine{store: store, clubs: clubs, tx: tx}
}

// rule is one row of the transition table: a precondition over the actor's
// and target's current memberships, the effect, and the redirect location.
type rule struct {
	// selfTarget transitions act on the actor's own membership; targetID is ignored.
	selfTarget bool
	// actionable re-checks both roles at call time, under row locks.
	// Both memberships are non-nil when called.
	actionable func(actor, target *domain.Membership) bool
	apply      func(ctx context.Context, s Store, actor, target *domain.Membership) error
	successKey string
	redirect   func(clubID string) string
}

func setRole(role domain.Role) func(ctx context.Context, s Store, actor, target *domain.Membership) error {
	return func(ctx context.Context, s Store, _, target *domain.Membership) error {
		return s.SetRole(ctx, target.UserID, target.ClubID, role)
	}
}

func deleteTarget(ctx context.Context, s Store, _, target *domain.Membership) error {
	return s.Delete(ctx, target.UserID, target.ClubID)
}

var rules = map[Transition]rule{
	TransitionApprove: {
		actionable: func(actor, target *domain.Membership) bool {
			return (actor.Role == domain.RoleOfficer || actor.Role == domain.RoleOwner) &&
				target.Role == domain.RoleApplicant
		},
		apply:      setRole(domain.RoleMember),
		successKey: "membership.approved",
		redirect:   rbac.ApplicantsPath,
	},
	TransitionReject: {
		actionable: func(actor, target *domain.Membership) bool {
			return (actor.Role == domain.RoleOfficer || actor.Role == domain.RoleOwner) &&
				target.Role == domain.RoleApplicant
		},
		apply:      deleteTarget,
		successKey: "membership.rejected",
		redirect:   rbac.ApplicantsPath,
	},
	TransitionPromote: {
		actionable: func(actor, target *domain.Membership) bool {
			return actor.Role == domain.RoleOwner && target.Role == domain.RoleMember
		},
		apply:      setRole(domain.RoleOfficer),
		successKey: "membership.promoted",
		redirect:   rbac.MembersPath,
	},
	TransitionDemote: {
		actionable: func(actor, target *domain.Membership) bool {
			return actor.Role == domain.RoleOwner && target.Role == domain.RoleOfficer
		},
		apply:      setRole(domain.RoleMember),
		successKey: "membership.demoted",
		redirect:   rbac.MembersPath,
	},
	TransitionRemove: {
		// Owners may remove Officers and Members; Officers only Members.
		// Owner's wider reach is listed here explicitly, not derived from
		// any role ordering.
		actionable: func(actor, target *domain.Membership) bool {
			switch actor.Role {
			case domain.RoleOwner:
				return target.Role == domain.RoleOfficer || target.Role == domain.RoleMember
			case domain.RoleOfficer:
				return target.Role == domain.RoleMember
			}
			return false
		},
		apply:      deleteTarget,
		successKey: "membership.removed",
		redirect:   rbac.MembersPath,
	},
	TransitionTransferOwnership: {
		// Target must presently be an Officer; an Owner cannot transfer
		// directly to a Member or Applicant.
		actionable: func(actor, target *domain.Membership) bool {
			return actor.Role == domain.RoleOwner && target.Role == domain.RoleOfficer
		},
		// Atomic swap inside the transaction: demote first so the club never
		// holds two owners, then install the new owner.
		apply: func(ctx context.Context, s Store, actor, target *domain.Membership) error {
			if err := s.SetRole(ctx, actor.UserID, actor.ClubID, domain.RoleOfficer); err != nil {
				return err
			}
			return s.SetRole(ctx, target.UserID, target.ClubID, domain.RoleOwner)
		},
		successKey: "membership.ownership_transferred",
		redirect:   rbac.MembersPath,
	},
	TransitionLeave: {
		selfTarget: true,
		// Owners must transfer ownership before leaving; applicants have no
		// self-withdraw path in the current rules.
		actionable: func(actor, _ *domain.Membership) bool {
			return actor.Role == domain.RoleMember || actor.Role == domain.RoleOfficer
		},
		apply:      deleteTarget,
		successKey: "membership.left",
		redirect:   func(string) string { return rbac.ClubsPath() },
	},
}

// RedirectFor returns the redirect location declared for the transition, used
// by the boundary when it cannot reach Execute (e.g. guard denial).
func RedirectFor(t Transition, clubID string) string {
	if t == TransitionApply {
		return rbac.WaitingPath(clubID)
	}
	if r, ok := rules[t]; ok {
		return r.redirect(clubID)
	}
	return rbac.ClubsPath()
}

func notActionable(t Transition, clubID string) *Result {
	return &Result{
		Status:     StatusNotActionable,
		Severity:   SeverityInfo,
		MessageKey: "membership.not_actionable",
		Redirect:   RedirectFor(t, clubID),
	}
}

// Execute validates and applies the named transition. actorID is the
// authenticated user; targetID is the membership acted on and is ignored for
// self-target transitions (Apply, Leave). A failed precondition returns a
// StatusNotActionable result with nil error and no mutation; errors are
// store-layer failures only, and roll back the whole transition.
func (e *Engine) Execute(ctx context.Context, t Transition, actorID, clubID, targetID string) (*Result, error) {
	if actorID == "" || clubID == "" {
		return notActionable(t, clubID), nil
	}
	if t == TransitionApply {
		return e.applyToClub(ctx, actorID, clubID)
	}
	r, ok := rules[t]
	if !ok {
		return nil, fmt.Errorf("unknown transition %q", t)
	}
	if r.selfTarget {
		targetID = actorID
	} else if targetID == "" || targetID == actorID {
		// No self-action except Apply and Leave.
		return notActionable(t, clubID), nil
	}

	var res *Result
	err := e.tx.InTx(ctx, func(ctx context.Context) error {
		actor, target, err := e.lockPair(ctx, actorID, targetID, clubID)
		if err != nil {
			return err
		}
		// A missing membership on either side means there is nothing to act
		// on: not-actionable, never an error.
		if actor == nil || target == nil || !r.actionable(actor, target) {
			res = notActionable(t, clubID)
			return nil
		}
		if err := r.apply(ctx, e.store, actor, target); err != nil {
			// Propagate so the transaction rolls back: an apply can mutate
			// more than one row (TransferOwnership) and must never commit
			// half of its effect.
			return err
		}
		res = &Result{
			Status:     StatusApplied,
			Severity:   SeveritySuccess,
			MessageKey: r.successKey,
			Redirect:   r.redirect(clubID),
		}
		return nil
	})
	if err != nil {
		// A row that vanished mid-apply (concurrent removal) is still a
		// not-actionable outcome, but only after the rollback above.
		if errors.Is(err, domain.ErrMembershipNotFound) {
			return notActionable(t, clubID), nil
		}
		return nil, err
	}
	return res, nil
}

// lockPair locks the actor's and target's membership rows in userID order so
// two concurrent transitions touching the same pair cannot deadlock.
func (e *Engine) lockPair(ctx context.Context, actorID, targetID, clubID string) (actor, target *domain.Membership, err error) {
	if actorID == targetID {
		m, err := e.store.GetByUserAndClubForUpdate(ctx, actorID, clubID)
		return m, m, err
	}
	first, second := actorID, targetID
	if second < first {
		first, second = second, first
	}
	a, err := e.store.GetByUserAndClubForUpdate(ctx, first, clubID)
	if err != nil {
		return nil, nil, err
	}
	b, err := e.store.GetByUserAndClubForUpdate(ctx, second, clubID)
	if err != nil {
		return nil, nil, err
	}
	if first == actorID {
		return a, b, nil
	}
	return b, a, nil
}

// applyToClub creates an Applicant membership for the actor. Applying to a
// club the user already belongs to is a benign duplicate, not a failure.
func (e *Engine) applyToClub(ctx context.Context, actorID, clubID string) (*Result, error) {
	var res *Result
	err := e.tx.InTx(ctx, func(ctx context.Context) error {
		club, err := e.clubs.GetByID(ctx, clubID)
		if err != nil {
			return err
		}
		if club == nil {
			res = notActionable(TransitionApply, clubID)
			return nil
		}
		m := &domain.Membership{
			ID:        uuid.New().String(),
			UserID:    actorID,
			ClubID:    clubID,
			Role:      domain.RoleApplicant,
			CreatedAt: time.Now().UTC(),
		}
		if err := e.store.Create(ctx, m); err != nil {
			if errors.Is(err, domain.ErrDuplicateMembership) {
				res = &Result{
					Status:     StatusAlreadyApplied,
					Severity:   SeverityInfo,
					MessageKey: "membership.already_applied",
					Redirect:   rbac.WaitingPath(clubID),
				}
				return nil
			}
			return err
		}
		res = &Result{
			Status:     StatusApplied,
			Severity:   SeveritySuccess,
			MessageKey: "membership.applied",
			Redirect:   rbac.WaitingPath(clubID),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
