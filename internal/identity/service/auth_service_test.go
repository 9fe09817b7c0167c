package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	identitydomain "club-control-plane/internal/identity/domain"
	"club-control-plane/internal/security"
	userdomain "club-control-plane/internal/user/domain"
)

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*userdomain.User{}}
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return userdomain.ErrDuplicateEmail
	}
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) disable(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		u.Status = userdomain.UserStatusDisabled
	}
}

type memIdentityRepo struct {
	mu     sync.Mutex
	byUser map[string]*identitydomain.Identity
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{byUser: map[string]*identitydomain.Identity{}}
}

func (r *memIdentityRepo) GetByUserAndProvider(_ context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byUser[userID]
	if !ok || i.Provider != provider {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *memIdentityRepo) Create(_ context.Context, i *identitydomain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *i
	r.byUser[i.UserID] = &cp
	return nil
}

type directTx struct{}

func (directTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	users := newMemUserRepo()
	svc := NewAuthService(users, newMemIdentityRepo(), security.NewHasher(4), tokens, directTx{})
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice@Example.com", "secret-password", "Alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.UserID == "" {
		t.Fatal("user id not set")
	}

	// Email is normalized: login with the lowercase form.
	res, err := svc.Login(ctx, "alice@example.com", "secret-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.UserID != reg.UserID {
		t.Errorf("login user = %s, want %s", res.UserID, reg.UserID)
	}
	if res.AccessToken == "" || res.ExpiresAt.IsZero() {
		t.Error("access token not issued")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "secret-password", "Alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, "alice@example.com", "another-password", "Alice 2")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("error = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "secret-password", "X"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("invalid email: error = %v, want ErrInvalidEmail", err)
	}
	if _, err := svc.Register(ctx, "x@example.com", "short", "X"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password: error = %v, want ErrWeakPassword", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "secret-password", "Alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	if _, err := svc.Login(context.Background(), "ghost@example.com", "whatever-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	svc, users := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "secret-password", "Alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	users.disable("alice@example.com")
	if _, err := svc.Login(ctx, "alice@example.com", "secret-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}
