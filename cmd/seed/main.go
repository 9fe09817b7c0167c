// Command seed loads idempotent development data: two users, one club with
// the first user as Owner, and a pending application from the second user.
// Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"log"

	clubdomain "club-control-plane/internal/club/domain"
	clubrepo "club-control-plane/internal/club/repository"
	clubservice "club-control-plane/internal/club/service"
	"club-control-plane/internal/config"
	"club-control-plane/internal/db"
	identityrepo "club-control-plane/internal/identity/repository"
	identityservice "club-control-plane/internal/identity/service"
	membershiprepo "club-control-plane/internal/membership/repository"
	membershipservice "club-control-plane/internal/membership/service"
	"club-control-plane/internal/security"
	userrepo "club-control-plane/internal/user/repository"
)

const (
	ownerEmail     = "owner@example.com"
	applicantEmail = "applicant@example.com"
	seedPassword   = "password123"
	seedClubName   = "Chess Club"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	tx := db.NewTransactor(conn)
	users := userrepo.NewPostgresRepository(conn)
	identities := identityrepo.NewPostgresRepository(conn)
	clubs := clubrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)

	hasher := security.NewHasher(cfg.BcryptCost)
	auth := identityservice.NewAuthService(users, identities, hasher, nil, tx)
	clubService := clubservice.NewService(clubs, memberships, tx)
	engine := membershipservice.NewEngine(memberships, clubs, tx)

	ownerID := ensureUser(ctx, auth, users, ownerEmail, "Olive Owner")
	applicantID := ensureUser(ctx, auth, users, applicantEmail, "Abe Applicant")

	clubID := ensureClub(ctx, clubService, clubs, ownerID)

	res, err := engine.Execute(ctx, membershipservice.TransitionApply, applicantID, clubID, "")
	if err != nil {
		log.Fatalf("seed: apply: %v", err)
	}
	log.Printf("seed: application for %s: %s", applicantEmail, res.Status)
	log.Printf("seed: done (club %s, owner %s, applicant %s)", clubID, ownerID, applicantID)
}

func ensureUser(ctx context.Context, auth *identityservice.AuthService, users *userrepo.PostgresRepository, email, name string) string {
	res, err := auth.Register(ctx, email, seedPassword, name)
	if err == nil {
		log.Printf("seed: created user %s", email)
		return res.UserID
	}
	if !errors.Is(err, identityservice.ErrEmailAlreadyRegistered) {
		log.Fatalf("seed: register %s: %v", email, err)
	}
	u, err := users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		log.Fatalf("seed: lookup %s: %v", email, err)
	}
	return u.ID
}

func ensureClub(ctx context.Context, svc *clubservice.Service, clubs *clubrepo.PostgresRepository, ownerID string) string {
	club, err := svc.CreateClub(ctx, ownerID, seedClubName, "Weekly games and tournaments", "12 Main St")
	if err == nil {
		log.Printf("seed: created club %s", seedClubName)
		return club.ID
	}
	if !errors.Is(err, clubdomain.ErrDuplicateClubName) {
		log.Fatalf("seed: create club: %v", err)
	}
	existing, err := clubs.GetByName(ctx, seedClubName)
	if err != nil || existing == nil {
		log.Fatalf("seed: lookup club: %v", err)
	}
	return existing.ID
}
