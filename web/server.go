package web

import (
	"context"
	"net/http"
	"time"

	"rocketbet/config"
	"rocketbet/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Server is the HTTP surface of the game: player auth and betting,
// the admin console, public reads and the live update socket.
type Server struct {
	cfg        *config.Config
	users      service.UserService
	betting    service.BettingService
	settlement service.SettlementService
	rounds     service.RoundService
	stats      service.StatsService
	game       service.GameService
	sessions   *SessionStore
	hub        *Hub
	httpServer *http.Server
}

// NewServer creates the HTTP server and wires up all routes
func NewServer(
	cfg *config.Config,
	users service.UserService,
	betting service.BettingService,
	settlement service.SettlementService,
	rounds service.RoundService,
	stats service.StatsService,
	game service.GameService,
	hub *Hub,
) *Server {
	s := &Server{
		cfg:        cfg,
		users:      users,
		betting:    betting,
		settlement: settlement,
		rounds:     rounds,
		stats:      stats,
		game:       game,
		sessions:   NewSessionStore(),
		hub:        hub,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/admin/login", s.handleAdminLogin)

		r.Get("/rounds", s.handleGetRounds)
		r.Get("/rounds/{round}/results", s.handleGetResults)
		r.Get("/leaderboard", s.handleLeaderboard)

		// Player routes
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.Post("/me/advance", s.handleAdvanceRound)
			r.Post("/bets", s.handlePlaceBet)
			r.Get("/bets", s.handleMyBets)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/rounds/{round}/settle", s.handleSettleRound)
			r.Post("/rounds/{round}/settle-all", s.handleSettleAll)
			r.Post("/rounds/{round}/results", s.handlePublishResult)
			r.Get("/rounds/{round}/totals", s.handleRoundTotals)
			r.Get("/users", s.handleListUsers)
			r.Put("/users/{id}/credits", s.handleSetCredits)
			r.Get("/overview", s.handleOverview)
			r.Post("/reset", s.handleReset)
		})
	})

	r.Get("/ws", s.hub.HandleWS)

	return r
}

// Start runs the HTTP server until it is shut down
func (s *Server) Start() error {
	log.WithField("addr", s.cfg.ListenAddr).Info("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type contextKey string

const sessionKey contextKey = "session"

// requireUser rejects requests without a valid player session
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := s.sessions.sessionFromRequest(r)
		if session == nil || session.IsAdmin {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

// requireAdmin rejects requests without the admin capability
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := s.sessions.sessionFromRequest(r)
		if session == nil || !session.IsAdmin {
			writeError(w, http.StatusUnauthorized, "admin access required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

func sessionFrom(r *http.Request) *Session {
	session, _ := r.Context().Value(sessionKey).(*Session)
	return session
}
