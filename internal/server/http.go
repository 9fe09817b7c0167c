// Package server assembles the chi router and the HTTP server.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	clubhandler "club-control-plane/internal/club/handler"
	healthhandler "club-control-plane/internal/health/handler"
	identityhandler "club-control-plane/internal/identity/handler"
	membershiphandler "club-control-plane/internal/membership/handler"
	"club-control-plane/internal/server/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *identityhandler.AuthHandler
	Clubs       *clubhandler.ClubHandler
	Transitions *membershiphandler.TransitionHandler
	Health      *healthhandler.HealthHandler
}

// NewRouter builds the HTTP router: request id, logging and tracing first,
// then token authentication, then the route groups.
func NewRouter(h Handlers, tokens middleware.TokenValidator, serviceName string) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace(serviceName))
	r.Use(middleware.Authenticate(tokens))

	h.Health.Mount(r)
	h.Auth.Mount(r)
	h.Clubs.Mount(r)
	h.Transitions.Mount(r)
	return r
}

// NewHTTPServer wraps the router in an http.Server with sane timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
