package rbac

import (
	"context"
	"testing"

	clubdomain "club-control-plane/internal/club/domain"
	"club-control-plane/internal/membership/domain"
)

// fixture answers membership and club queries from fixed data.
type fixture struct {
	memberships map[string]domain.Role // userID|clubID -> role
	clubs       []string
}

func (f *fixture) GetByUserAndClub(_ context.Context, userID, clubID string) (*domain.Membership, error) {
	role, ok := f.memberships[userID+"|"+clubID]
	if !ok {
		return nil, nil
	}
	return &domain.Membership{UserID: userID, ClubID: clubID, Role: role}, nil
}

func (f *fixture) ListByUser(_ context.Context, userID string) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for k, role := range f.memberships {
		for _, clubID := range f.clubs {
			if k == userID+"|"+clubID {
				out = append(out, &domain.Membership{UserID: userID, ClubID: clubID, Role: role})
			}
		}
	}
	return out, nil
}

func (f *fixture) List(_ context.Context) ([]*clubdomain.Club, error) {
	out := make([]*clubdomain.Club, 0, len(f.clubs))
	for _, id := range f.clubs {
		out = append(out, &clubdomain.Club{ID: id, Name: "club-" + id})
	}
	return out, nil
}

func TestRoleOf(t *testing.T) {
	f := &fixture{
		memberships: map[string]domain.Role{"alice|c1": domain.RoleOfficer},
		clubs:       []string{"c1"},
	}

	role, ok, err := RoleOf(context.Background(), f, "alice", "c1")
	if err != nil || !ok || role != domain.RoleOfficer {
		t.Fatalf("RoleOf = (%s, %v, %v), want (officer, true, nil)", role, ok, err)
	}

	// No membership.
	_, ok, err = RoleOf(context.Background(), f, "bob", "c1")
	if err != nil || ok {
		t.Fatalf("RoleOf without membership: ok = %v, err = %v", ok, err)
	}

	// Anonymous.
	_, ok, err = RoleOf(context.Background(), f, "", "c1")
	if err != nil || ok {
		t.Fatalf("RoleOf anonymous: ok = %v, err = %v", ok, err)
	}
}

func TestRolePredicatesAreExactMatch(t *testing.T) {
	f := &fixture{
		memberships: map[string]domain.Role{
			"app|c1":    domain.RoleApplicant,
			"member|c1": domain.RoleMember,
			"off|c1":    domain.RoleOfficer,
			"owner|c1":  domain.RoleOwner,
		},
		clubs: []string{"c1"},
	}
	ctx := context.Background()

	check := func(name string, got bool, want bool) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	ok, _ := IsApplicant(ctx, f, "app", "c1")
	check("IsApplicant(app)", ok, true)
	ok, _ = IsMember(ctx, f, "member", "c1")
	check("IsMember(member)", ok, true)
	ok, _ = IsOfficer(ctx, f, "off", "c1")
	check("IsOfficer(off)", ok, true)
	ok, _ = IsOwner(ctx, f, "owner", "c1")
	check("IsOwner(owner)", ok, true)

	// An Owner is not a Member, an Officer is not a Member: no role subsumes another.
	ok, _ = IsMember(ctx, f, "owner", "c1")
	check("IsMember(owner)", ok, false)
	ok, _ = IsMember(ctx, f, "off", "c1")
	check("IsMember(off)", ok, false)
	ok, _ = IsOfficer(ctx, f, "owner", "c1")
	check("IsOfficer(owner)", ok, false)
	ok, _ = IsApplicant(ctx, f, "member", "c1")
	check("IsApplicant(member)", ok, false)
}

func TestMyAndOtherClubs(t *testing.T) {
	f := &fixture{
		memberships: map[string]domain.Role{"alice|c1": domain.RoleMember},
		clubs:       []string{"c1", "c2"},
	}
	ctx := context.Background()

	mine, err := MyClubs(ctx, f, f, "alice")
	if err != nil {
		t.Fatalf("MyClubs: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "c1" {
		t.Fatalf("MyClubs = %+v, want [c1]", mine)
	}

	other, err := OtherClubs(ctx, f, f, "alice")
	if err != nil {
		t.Fatalf("OtherClubs: %v", err)
	}
	if len(other) != 1 || other[0].ID != "c2" {
		t.Fatalf("OtherClubs = %+v, want [c2]", other)
	}

	mine, err = MyClubs(ctx, f, f, "")
	if err != nil || len(mine) != 0 {
		t.Fatalf("anonymous MyClubs = %+v, %v", mine, err)
	}
	other, err = OtherClubs(ctx, f, f, "")
	if err != nil || len(other) != 2 {
		t.Fatalf("anonymous OtherClubs = %+v, %v", other, err)
	}
}
