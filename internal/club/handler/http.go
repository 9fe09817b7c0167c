// Package handler serves club listings, the tier-gated club areas, and
// account deletion over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"club-control-plane/internal/audit"
	clubdomain "club-control-plane/internal/club/domain"
	"club-control-plane/internal/club/service"
	mdomain "club-control-plane/internal/membership/domain"
	"club-control-plane/internal/platform/rbac"
	"club-control-plane/internal/server/middleware"
)

// MembershipReader is the slice of the membership store the handler needs for
// role checks and listings.
type MembershipReader interface {
	GetByUserAndClub(ctx context.Context, userID, clubID string) (*mdomain.Membership, error)
	ListByClub(ctx context.Context, clubID string) ([]*mdomain.Membership, error)
	ListByClubAndRole(ctx context.Context, clubID string, role mdomain.Role) ([]*mdomain.Membership, error)
}

// ClubHandler serves /v1/clubs and /v1/account routes.
type ClubHandler struct {
	clubs       *service.Service
	lifecycle   *service.Lifecycle
	memberships MembershipReader
	audits      audit.AuditLogger
}

// NewClubHandler returns a ClubHandler over the given services.
func NewClubHandler(clubs *service.Service, lifecycle *service.Lifecycle, memberships MembershipReader, audits audit.AuditLogger) *ClubHandler {
	return &ClubHandler{clubs: clubs, lifecycle: lifecycle, memberships: memberships, audits: audits}
}

// Mount registers the club and account routes on r. The router must run the
// auth middleware first so the user id is on the context.
func (h *ClubHandler) Mount(r chi.Router) {
	r.Get("/v1/clubs", h.ListClubs)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/v1/clubs", h.CreateClub)
		r.Get("/v1/clubs/mine", h.MyClubs)
		r.Get("/v1/clubs/other", h.OtherClubs)
		r.Get("/v1/clubs/{clubID}/members", h.Members)
		r.Get("/v1/clubs/{clubID}/applicants", h.Applicants)
		r.Get("/v1/clubs/{clubID}/waiting", h.Waiting)
		r.Delete("/v1/account", h.DeleteAccount)
	})
}

type clubResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type membershipResponse struct {
	UserID string    `json:"userId"`
	Role   string    `json:"role"`
	Since  time.Time `json:"since"`
}

type createClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

func toClubResponse(c *clubdomain.Club) clubResponse {
	return clubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
	}
}

func toClubList(clubs []*clubdomain.Club) []clubResponse {
	out := make([]clubResponse, 0, len(clubs))
	for _, c := range clubs {
		out = append(out, toClubResponse(c))
	}
	return out
}

func toMembershipList(ms []*mdomain.Membership) []membershipResponse {
	out := make([]membershipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, membershipResponse{UserID: m.UserID, Role: string(m.Role), Since: m.CreatedAt})
	}
	return out
}

// CreateClub creates a club; the caller becomes its founding Owner.
func (h *ClubHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	var req createClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	club, err := h.clubs.CreateClub(r.Context(), userID, req.Name, req.Description, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, clubdomain.ErrDuplicateClubName):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, clubdomain.ErrInvalidClub):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("clubs: create: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	h.audits.LogEvent(r.Context(), club.ID, userID, "club.create", "club:"+club.ID, "")
	writeJSON(w, http.StatusCreated, toClubResponse(club))
}

// ListClubs returns every club on the platform. Anonymous access is allowed.
func (h *ClubHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubs.ListClubs(r.Context())
	if err != nil {
		log.Printf("clubs: list: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toClubList(clubs))
}

// MyClubs returns the clubs where the caller holds any membership.
func (h *ClubHandler) MyClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubs.MyClubs(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Printf("clubs: mine: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toClubList(clubs))
}

// OtherClubs returns the clubs where the caller holds no membership.
func (h *ClubHandler) OtherClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubs.OtherClubs(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		log.Printf("clubs: other: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toClubList(clubs))
}

// guard gates the request at the required tier. A denial redirects the caller
// to the area they do qualify for and reports handled=true.
func (h *ClubHandler) guard(w http.ResponseWriter, r *http.Request, clubID string, required rbac.Tier) (handled bool) {
	userID := middleware.GetUserID(r.Context())
	decision, err := rbac.RequireTier(r.Context(), h.memberships, userID, clubID, required)
	if err != nil {
		log.Printf("clubs: guard: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return true
	}
	if !decision.Allowed {
		http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
		return true
	}
	return false
}

// Members lists the standing members of the club (Member and above).
func (h *ClubHandler) Members(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "clubID")
	if h.guard(w, r, clubID, rbac.TierMember) {
		return
	}
	all, err := h.memberships.ListByClub(r.Context(), clubID)
	if err != nil {
		log.Printf("clubs: members: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	standing := make([]*mdomain.Membership, 0, len(all))
	for _, m := range all {
		if m.Role != mdomain.RoleApplicant {
			standing = append(standing, m)
		}
	}
	writeJSON(w, http.StatusOK, toMembershipList(standing))
}

// Applicants lists the club's pending applicants. Officer tier and above.
func (h *ClubHandler) Applicants(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "clubID")
	if h.guard(w, r, clubID, rbac.TierOfficer) {
		return
	}
	applicants, err := h.memberships.ListByClubAndRole(r.Context(), clubID, mdomain.RoleApplicant)
	if err != nil {
		log.Printf("clubs: applicants: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toMembershipList(applicants))
}

type waitingResponse struct {
	Club   clubResponse `json:"club"`
	Status string       `json:"status"`
}

// Waiting is the applicant's landing area: the club plus their pending status.
func (h *ClubHandler) Waiting(w http.ResponseWriter, r *http.Request) {
	clubID := chi.URLParam(r, "clubID")
	if h.guard(w, r, clubID, rbac.TierApplicant) {
		return
	}
	club, err := h.clubs.GetClub(r.Context(), clubID)
	if err != nil {
		log.Printf("clubs: waiting: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if club == nil {
		writeError(w, http.StatusNotFound, "club not found")
		return
	}
	role, _, err := rbac.RoleOf(r.Context(), h.memberships, middleware.GetUserID(r.Context()), clubID)
	if err != nil {
		log.Printf("clubs: waiting: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, waitingResponse{Club: toClubResponse(club), Status: string(role)})
}

type deleteBlockedResponse struct {
	Error      string `json:"error"`
	MessageKey string `json:"messageKey"`
	ClubID     string `json:"clubId"`
}

// DeleteAccount removes the caller's account and cascades through their
// memberships. A club that still needs its ownership transferred blocks the
// whole deletion with 409 and names the club.
func (h *ClubHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.lifecycle.DeleteAccount(r.Context(), userID); err != nil {
		var blocked *service.OwnershipTransferRequiredError
		if errors.As(err, &blocked) {
			writeJSON(w, http.StatusConflict, deleteBlockedResponse{
				Error:      blocked.Error(),
				MessageKey: "account.ownership_transfer_required",
				ClubID:     blocked.ClubID,
			})
			return
		}
		log.Printf("account: delete: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.audits.LogEvent(r.Context(), "", userID, "account.delete", "user:"+userID, "")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("clubs: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
