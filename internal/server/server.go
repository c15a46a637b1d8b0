// Package server exposes the workout store, live sessions, and history to
// the app shell over a device-local HTTP API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/store"
	"github.com/claude/replog/internal/workouts"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	workouts *workouts.Store
	local    *store.Local
	finisher *session.Finisher
	sessions *registry
	bounds   session.Bounds
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(w *workouts.Store, local *store.Local, finisher *session.Finisher, bounds session.Bounds, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		workouts: w,
		local:    local,
		finisher: finisher,
		sessions: newRegistry(),
		bounds:   bounds,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/health", s.handleHealth)

	// Read endpoints
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/history", s.handleQueryHistory)
	s.router.Get("/api/v1/history/unsynced", s.handleUnsyncedHistory)
	s.router.Get("/api/v1/history/{id}", s.handleGetHistory)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Post("/api/v1/workouts", s.handleCreateWorkout)
		r.Patch("/api/v1/workouts/{id}", s.handleUpdateWorkout)
		r.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
		r.Post("/api/v1/workouts/{id}/days", s.handleAddDay)
		r.Delete("/api/v1/workouts/{id}/days/{dayID}", s.handleDeleteDay)
		r.Post("/api/v1/workouts/{id}/days/{dayID}/exercises", s.handleAddExercise)
		r.Patch("/api/v1/workouts/{id}/days/{dayID}/exercises/{exerciseID}", s.handleUpdateExercise)
		r.Delete("/api/v1/workouts/{id}/days/{dayID}/exercises/{exerciseID}", s.handleDeleteExercise)

		r.Post("/api/v1/sessions", s.handleStartSession)
		r.Get("/api/v1/sessions/{token}", s.handleGetSession)
		r.Post("/api/v1/sessions/{token}/sets", s.handleRecordSet)
		r.Delete("/api/v1/sessions/{token}/sets/{setIndex}", s.handleClearSet)
		r.Post("/api/v1/sessions/{token}/advance", s.handleAdvance)
		r.Post("/api/v1/sessions/{token}/retreat", s.handleRetreat)
		r.Post("/api/v1/sessions/{token}/finish", s.handleFinishSession)
		r.Delete("/api/v1/sessions/{token}", s.handleAbandonSession)
	})
}
