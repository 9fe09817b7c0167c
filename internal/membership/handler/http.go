// Package handler routes role transition requests into the transition engine
// and turns every outcome into a redirect plus a notification.
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"club-control-plane/internal/audit"
	mdomain "club-control-plane/internal/membership/domain"
	"club-control-plane/internal/membership/service"
	"club-control-plane/internal/notify"
	"club-control-plane/internal/platform/rbac"
	"club-control-plane/internal/server/middleware"
)

// RoleChecker is the membership getter the pre-execution guard reads roles from.
type RoleChecker interface {
	GetByUserAndClub(ctx context.Context, userID, clubID string) (*mdomain.Membership, error)
}

// TransitionHandler serves the transition POST routes.
type TransitionHandler struct {
	engine   *service.Engine
	roles    RoleChecker
	audits   audit.AuditLogger
	notifier notify.Notifier
}

// NewTransitionHandler returns a TransitionHandler over the given engine.
func NewTransitionHandler(engine *service.Engine, roles RoleChecker, audits audit.AuditLogger, notifier notify.Notifier) *TransitionHandler {
	return &TransitionHandler{engine: engine, roles: roles, audits: audits, notifier: notifier}
}

// Mount registers the transition routes on r. All routes require an
// authenticated user; the router must run the auth middleware first.
func (h *TransitionHandler) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/v1/clubs/{clubID}/apply", h.transition(service.TransitionApply))
		r.Post("/v1/clubs/{clubID}/leave", h.transition(service.TransitionLeave))
		r.Post("/v1/clubs/{clubID}/applicants/{userID}/approve", h.transition(service.TransitionApprove))
		r.Post("/v1/clubs/{clubID}/applicants/{userID}/reject", h.transition(service.TransitionReject))
		r.Post("/v1/clubs/{clubID}/members/{userID}/promote", h.transition(service.TransitionPromote))
		r.Post("/v1/clubs/{clubID}/members/{userID}/demote", h.transition(service.TransitionDemote))
		r.Post("/v1/clubs/{clubID}/members/{userID}/remove", h.transition(service.TransitionRemove))
		r.Post("/v1/clubs/{clubID}/members/{userID}/transfer-ownership", h.transition(service.TransitionTransferOwnership))
	})
}

// gateTier is the request-level tier for each transition. The engine re-checks
// exact roles under row locks; this gate only decides whether the request may
// reach the engine at all, and where to send it when it may not.
var gateTier = map[service.Transition]rbac.Tier{
	service.TransitionLeave:             rbac.TierMember,
	service.TransitionApprove:           rbac.TierOfficer,
	service.TransitionReject:            rbac.TierOfficer,
	service.TransitionRemove:            rbac.TierOfficer,
	service.TransitionPromote:           rbac.TierOwner,
	service.TransitionDemote:            rbac.TierOwner,
	service.TransitionTransferOwnership: rbac.TierOwner,
}

func (h *TransitionHandler) transition(t service.Transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actorID := middleware.GetUserID(ctx)
		clubID := chi.URLParam(r, "clubID")
		targetID := chi.URLParam(r, "userID")

		if required, gated := gateTier[t]; gated {
			decision, err := rbac.RequireTier(ctx, h.roles, actorID, clubID, required)
			if err != nil {
				log.Printf("transitions: guard %s: %v", t, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if !decision.Allowed {
				h.emit(ctx, t, clubID, actorID, targetID, &service.Result{
					Status:     service.StatusNotActionable,
					Severity:   service.SeverityInfo,
					MessageKey: "membership.not_allowed",
					Redirect:   decision.Redirect,
				})
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}
		}

		res, err := h.engine.Execute(ctx, t, actorID, clubID, targetID)
		if err != nil {
			log.Printf("transitions: execute %s: %v", t, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if res.Applied() {
			h.audits.LogEvent(ctx, clubID, actorID, "membership."+string(t), "user:"+targetID, "")
		}
		h.emit(ctx, t, clubID, actorID, targetID, res)
		http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
	}
}

func (h *TransitionHandler) emit(ctx context.Context, t service.Transition, clubID, actorID, targetID string, res *service.Result) {
	notify.EmitAsync(h.notifier, ctx, &notify.Notification{
		Severity:   string(res.Severity),
		MessageKey: res.MessageKey,
		Transition: string(t),
		ClubID:     clubID,
		ActorID:    actorID,
		TargetID:   targetID,
		Source:     "transition-engine",
		CreatedAt:  time.Now().UTC(),
	})
}
