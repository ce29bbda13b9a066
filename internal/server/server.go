package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/repcoach/internal/service"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	overload   *service.ProgressiveOverload
	adaptation *service.Adaptation
	log        *slog.Logger
	apiKey     string
	router     chi.Router
}

// New creates a new Server with all routes configured.
func New(overload *service.ProgressiveOverload, adaptation *service.Adaptation, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		overload:   overload,
		adaptation: adaptation,
		log:        log,
		apiKey:     apiKey,
		router:     chi.NewRouter(),
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

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/workouts", s.handleLogWorkout)
		r.Post("/api/v1/strength/record", s.handleRecordStrength)
	})

	// Read/advisory endpoints
	s.router.Get("/api/v1/strength/history", s.handleStrengthHistory)
	s.router.Get("/api/v1/strength/1rm", s.handleCurrentOneRM)
	s.router.Get("/api/v1/volume/weekly", s.handleWeeklyVolume)
	s.router.Get("/api/v1/progression/recommendation", s.handleRecommendation)
	s.router.Get("/api/v1/progression/deload-check", s.handleDeloadCheck)
	s.router.Get("/api/v1/split", s.handleWeeklySplit)
	s.router.Post("/api/v1/adapt", s.handleAdapt)
}
