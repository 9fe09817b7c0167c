package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	clubdomain "club-control-plane/internal/club/domain"
	"club-control-plane/internal/club/service"
	mdomain "club-control-plane/internal/membership/domain"
	"club-control-plane/internal/server/middleware"
)

// memberStore implements every membership-store slice the club handler stack needs.
type memberStore struct {
	mu   sync.Mutex
	rows map[string]*mdomain.Membership
}

func newMemberStore() *memberStore { return &memberStore{rows: map[string]*mdomain.Membership{}} }

func mkey(userID, clubID string) string { return userID + "|" + clubID }

func (s *memberStore) put(userID, clubID string, role mdomain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[mkey(userID, clubID)] = &mdomain.Membership{
		ID: userID + "-" + clubID, UserID: userID, ClubID: clubID, Role: role, CreatedAt: time.Now().UTC(),
	}
}

func (s *memberStore) has(userID, clubID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[mkey(userID, clubID)]
	return ok
}

func (s *memberStore) GetByUserAndClub(_ context.Context, userID, clubID string) (*mdomain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rows[mkey(userID, clubID)]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *memberStore) ListByClub(_ context.Context, clubID string) ([]*mdomain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*mdomain.Membership
	for _, m := range s.rows {
		if m.ClubID == clubID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *memberStore) ListByClubAndRole(ctx context.Context, clubID string, role mdomain.Role) ([]*mdomain.Membership, error) {
	all, _ := s.ListByClub(ctx, clubID)
	var out []*mdomain.Membership
	for _, m := range all {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memberStore) ListByUser(_ context.Context, userID string) ([]*mdomain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*mdomain.Membership
	for _, m := range s.rows {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClubID < out[j].ClubID })
	return out, nil
}

func (s *memberStore) ListByUserForUpdate(ctx context.Context, userID string) ([]*mdomain.Membership, error) {
	return s.ListByUser(ctx, userID)
}

func (s *memberStore) CountByClub(_ context.Context, clubID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.rows {
		if m.ClubID == clubID {
			n++
		}
	}
	return n, nil
}

func (s *memberStore) CountByClubAndRole(_ context.Context, clubID string, role mdomain.Role) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.rows {
		if m.ClubID == clubID && m.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *memberStore) Create(_ context.Context, m *mdomain.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[mkey(m.UserID, m.ClubID)]; ok {
		return mdomain.ErrDuplicateMembership
	}
	cp := *m
	s.rows[mkey(m.UserID, m.ClubID)] = &cp
	return nil
}

func (s *memberStore) Delete(_ context.Context, userID, clubID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[mkey(userID, clubID)]; !ok {
		return mdomain.ErrMembershipNotFound
	}
	delete(s.rows, mkey(userID, clubID))
	return nil
}

func (s *memberStore) DeleteByClub(_ context.Context, clubID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, m := range s.rows {
		if m.ClubID == clubID {
			delete(s.rows, k)
		}
	}
	return nil
}

type clubStore struct {
	mu   sync.Mutex
	byID map[string]*clubdomain.Club
}

func newClubStore() *clubStore { return &clubStore{byID: map[string]*clubdomain.Club{}} }

func (r *clubStore) put(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = &clubdomain.Club{ID: id, Name: name, CreatedAt: time.Now().UTC()}
}

func (r *clubStore) GetByID(_ context.Context, id string) (*clubdomain.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *clubStore) List(_ context.Context) ([]*clubdomain.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*clubdomain.Club, 0, len(r.byID))
	for _, c := range r.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *clubStore) Create(_ context.Context, c *clubdomain.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Name == c.Name {
			return clubdomain.ErrDuplicateClubName
		}
	}
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *clubStore) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return clubdomain.ErrClubNotFound
	}
	delete(r.byID, id)
	return nil
}

type userStore struct {
	mu      sync.Mutex
	deleted map[string]bool
}

func (u *userStore) Delete(_ context.Context, id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.deleted == nil {
		u.deleted = map[string]bool{}
	}
	u.deleted[id] = true
	return nil
}

func (u *userStore) wasDeleted(id string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.deleted[id]
}

type passTx struct{}

func (passTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type nopAudit struct{}

func (nopAudit) LogEvent(context.Context, string, string, string, string, string) {}

type env struct {
	router  chi.Router
	members *memberStore
	clubs   *clubStore
	users   *userStore
}

func newEnv() *env {
	members := newMemberStore()
	clubs := newClubStore()
	users := &userStore{}
	svc := service.NewService(clubs, members, passTx{})
	lifecycle := service.NewLifecycle(members, clubs, users, passTx{})
	h := NewClubHandler(svc, lifecycle, members, nopAudit{})
	r := chi.NewRouter()
	h.Mount(r)
	return &env{router: r, members: members, clubs: clubs, users: users}
}

func (e *env) do(t *testing.T, userID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateClub(t *testing.T) {
	e := newEnv()
	rec := e.do(t, "alice", http.MethodPost, "/v1/clubs", map[string]string{"name": "Chess Club"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var resp struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Name != "Chess Club" || resp.ID == "" {
		t.Errorf("response = %+v", resp)
	}
	if !e.members.has("alice", resp.ID) {
		t.Error("founding membership missing")
	}

	rec = e.do(t, "bob", http.MethodPost, "/v1/clubs", map[string]string{"name": "Chess Club"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate name status = %d, want 409", rec.Code)
	}
}

func TestListClubsIsPublic(t *testing.T) {
	e := newEnv()
	e.clubs.put("c1", "Chess Club")
	rec := e.do(t, "", http.MethodGet, "/v1/clubs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMembersListingExcludesApplicants(t *testing.T) {
	e := newEnv()
	e.clubs.put("c1", "Chess Club")
	e.members.put("owner", "c1", mdomain.RoleOwner)
	e.members.put("bob", "c1", mdomain.RoleMember)
	e.members.put("app", "c1", mdomain.RoleApplicant)

	rec := e.do(t, "bob", http.MethodGet, "/v1/clubs/c1/members", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var members []struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %+v, want 2 standing members", members)
	}
	for _, m := range members {
		if m.Role == string(mdomain.RoleApplicant) {
			t.Errorf("applicant leaked into members listing: %+v", m)
		}
	}
}

func TestMembersGateRedirectsApplicant(t *testing.T) {
	e := newEnv()
	e.clubs.put("c1", "Chess Club")
	e.members.put("app", "c1", mdomain.RoleApplicant)

	rec := e.do(t, "app", http.MethodGet, "/v1/clubs/c1/members", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/clubs/c1/waiting" {
		t.Errorf("location = %s", loc)
	}
}

func TestApplicantsGateRequiresOfficer(t *testing.T) {
	e := newEnv()
	e.clubs.put("c1", "Chess Club")
	e.members.put("bob", "c1", mdomain.RoleMember)
	e.members.put("off", "c1", mdomain.RoleOfficer)
	e.members.put("app", "c1", mdomain.RoleApplicant)

	rec := e.do(t, "off", http.MethodGet, "/v1/clubs/c1/applicants", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("officer status = %d, want 200", rec.Code)
	}

	rec = e.do(t, "bob", http.MethodGet, "/v1/clubs/c1/applicants", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("member status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/clubs/c1/members" {
		t.Errorf("location = %s", loc)
	}
}

func TestWaiting(t *testing.T) {
	e := newEnv()
	e.clubs.put("c1", "Chess Club")
	e.members.put("app", "c1", mdomain.RoleApplicant)

	rec := e.do(t, "app", http.MethodGet, "/v1/clubs/c1/waiting", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Club   struct{ Name string } `json:"club"`
		Status string                `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != string(mdomain.RoleApplicant) || resp.Club.Name != "Chess Club" {
		t.Errorf("response = %+v", resp)
	}
}

func TestDeleteAccount(t *testing.T) {
	e := newEnv()
	e.clubs.put("c1", "Chess Club")
	e.members.put("u", "c1", mdomain.RoleOwner)

	rec := e.do(t, "u", http.MethodDelete, "/v1/account", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body)
	}
	if !e.users.wasDeleted("u") {
		t.Error("user not deleted")
	}
	if e.members.has("u", "c1") {
		t.Error("membership still present")
	}
}

func TestDeleteAccountBlocked(t *testing.T) {
	e := newEnv()
	e.clubs.put("c1", "Chess Club")
	e.members.put("u", "c1", mdomain.RoleOwner)
	e.members.put("bob", "c1", mdomain.RoleMember)

	rec := e.do(t, "u", http.MethodDelete, "/v1/account", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body)
	}
	var resp struct {
		ClubID     string `json:"clubId"`
		MessageKey string `json:"messageKey"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ClubID != "c1" {
		t.Errorf("blocking club = %s, want c1", resp.ClubID)
	}
	if resp.MessageKey != "account.ownership_transfer_required" {
		t.Errorf("message key = %s", resp.MessageKey)
	}
	if e.users.wasDeleted("u") {
		t.Error("user deleted despite blocked club")
	}
}

func TestAccountRoutesRequireUser(t *testing.T) {
	e := newEnv()
	rec := e.do(t, "", http.MethodDelete, "/v1/account", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
