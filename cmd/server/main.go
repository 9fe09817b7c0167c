// Command server runs the club control plane HTTP API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club-control-plane/internal/audit"
	auditrepo "club-control-plane/internal/audit/repository"
	clubhandler "club-control-plane/internal/club/handler"
	clubrepo "club-control-plane/internal/club/repository"
	clubservice "club-control-plane/internal/club/service"
	"club-control-plane/internal/config"
	"club-control-plane/internal/db"
	healthhandler "club-control-plane/internal/health/handler"
	identityhandler "club-control-plane/internal/identity/handler"
	identityrepo "club-control-plane/internal/identity/repository"
	identityservice "club-control-plane/internal/identity/service"
	membershiphandler "club-control-plane/internal/membership/handler"
	membershiprepo "club-control-plane/internal/membership/repository"
	membershipservice "club-control-plane/internal/membership/service"
	"club-control-plane/internal/notify"
	notifyotel "club-control-plane/internal/notify/otel"
	notifyproducer "club-control-plane/internal/notify/producer"
	"club-control-plane/internal/security"
	"club-control-plane/internal/server"
	"club-control-plane/internal/server/middleware"
	telemetryotel "club-control-plane/internal/telemetry/otel"
	userrepo "club-control-plane/internal/user/repository"
)

const serviceName = "club-control-plane"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL must be set")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("security: private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("security: public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	tx := db.NewTransactor(conn)
	users := userrepo.NewPostgresRepository(conn)
	identities := identityrepo.NewPostgresRepository(conn)
	clubs := clubrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	audits := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.GetClientIP)

	// Transition outcomes flow to Kafka when brokers are configured, and
	// always to OTel logs when an OTLP endpoint is configured.
	var notifier notify.Notifier = notifyotel.NewNotifier(providers.LoggerProvider)
	kafkaProducer, err := notifyproducer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.NotifyKafkaTopic)
	if err != nil {
		log.Fatalf("notify: kafka: %v", err)
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		notifier = notifyproducer.Fanout(kafkaProducer, notifier)
	}

	authService := identityservice.NewAuthService(users, identities, hasher, tokens, tx)
	clubService := clubservice.NewService(clubs, memberships, tx)
	lifecycle := clubservice.NewLifecycle(memberships, clubs, users, tx)
	engine := membershipservice.NewEngine(memberships, clubs, tx)

	router := server.NewRouter(server.Handlers{
		Auth:        identityhandler.NewAuthHandler(authService, audits),
		Clubs:       clubhandler.NewClubHandler(clubService, lifecycle, memberships, audits),
		Transitions: membershiphandler.NewTransitionHandler(engine, memberships, audits, notifier),
		Health:      healthhandler.NewHealthHandler(conn),
	}, tokens, serviceName)

	srv := server.NewHTTPServer(cfg.HTTPAddr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Printf("server: received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}
	// Let in-flight async notification emits drain before telemetry teardown.
	time.Sleep(notify.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry: shutdown: %v", err)
	}
}
