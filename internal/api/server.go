package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ghostkyle24/bonusmarmitas/internal/capi"
	"github.com/ghostkyle24/bonusmarmitas/internal/config"
	"github.com/ghostkyle24/bonusmarmitas/internal/dedup"
	"github.com/ghostkyle24/bonusmarmitas/internal/pkg/httputil"
	"github.com/ghostkyle24/bonusmarmitas/internal/pkg/logger"
)

// EventForwarder sends one assembled conversion event downstream.
// *capi.Client is the production implementation; tests inject a stub.
type EventForwarder interface {
	SendEvent(ctx context.Context, evt capi.Event) (*capi.Response, error)
}

// Server is the lead-capture API: one conversion endpoint plus health.
type Server struct {
	cfg       *config.Config
	gate      dedup.Store
	forwarder EventForwarder
	router    *chi.Mux
	server    *http.Server
}

// NewServer wires the conversion pipeline. The dedup store and forwarder
// are injected so tests can swap them; the server owns no hidden global
// state.
func NewServer(cfg *config.Config, gate dedup.Store, forwarder EventForwarder) *Server {
	s := &Server{
		cfg:       cfg,
		gate:      gate,
		forwarder: forwarder,
	}
	s.router = s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(jsonRecoverer)

	// The landing page may be served from a different origin than the
	// API; no credentials beyond the pixel cookies are involved
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/conversion", s.handleConversion)

	return r
}

// jsonRecoverer is the top-level panic barrier: log the panic, answer a
// generic JSON 500, keep the submission details out of the response.
func jsonRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic in handler", "path", r.URL.Path, "panic", rec)
				httputil.Error(w, http.StatusInternalServerError, "Erro interno do servidor")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status":        "ok",
		"redis_enabled": s.cfg.Redis.Enabled(),
	})
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
