package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avolve-dao/avolve-sub003/database"
)

// Server wraps the HTTP server exposing the claim engine
type Server struct {
	httpServer *http.Server
}

// NewServer builds the router and returns a server listening on addr
func NewServer(addr string, handlers *Handlers, db *database.DB) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database ping failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/challenges", handlers.GetChallenges)
		r.Get("/challenges/today", handlers.GetTodaysChallenge)
		r.Get("/tokens", handlers.GetTokenTypes)

		r.Group(func(r chi.Router) {
			r.Use(withUser)
			r.Post("/claims", handlers.PostClaim)
			r.Get("/balances", handlers.GetBalances)
			r.Get("/balances/{symbol}", handlers.GetBalance)
			r.Get("/streaks/{scope}", handlers.GetStreak)
			r.Get("/ledger", handlers.GetLedger)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start begins serving requests and blocks until the server stops
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
