// Package server exposes the adaptation engine, plan generation, and
// stored data over a chi HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/stridecoach/internal/adapt"
	"github.com/claude/stridecoach/internal/calsync"
	"github.com/claude/stridecoach/internal/models"
	"github.com/claude/stridecoach/internal/storage"
)

// DefaultAthleteID scopes requests that do not name an athlete. The
// server is single-athlete in practice but all storage is scoped so a
// second athlete is a request field away.
const DefaultAthleteID = "self"

// Store is the persistence surface the handlers need. *storage.DB
// implements it; tests substitute an in-memory fake.
type Store interface {
	SavePlan(ctx context.Context, plan *models.Plan) error
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	GetActivePlan(ctx context.Context, athleteID string) (*models.Plan, error)
	ListPlans(ctx context.Context, athleteID string) ([]storage.PlanSummary, error)
	UpdatePlanDoc(ctx context.Context, plan *models.Plan) error
	UpsertDailyMetrics(ctx context.Context, athleteID string, m *models.DailyMetrics) error
	GetDailyMetrics(ctx context.Context, athleteID string, date time.Time) (*models.DailyMetrics, error)
	ListDailyMetrics(ctx context.Context, athleteID string, start, end time.Time) ([]models.DailyMetrics, error)
	InsertRecommendation(ctx context.Context, athleteID, sessionID string, rec *adapt.Recommendation) (string, error)
	ListRecommendations(ctx context.Context, athleteID string, limit int) ([]storage.RecommendationRecord, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	adapter  *adapt.Adapter
	scorer   *adapt.Scorer
	calendar *calsync.Builder
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, adapter *adapt.Adapter, scorer *adapt.Scorer, calendar *calsync.Builder, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		adapter:  adapter,
		scorer:   scorer,
		calendar: calendar,
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

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/adapt", s.handleAdapt)
		r.Post("/api/v1/adapt/quick", s.handleQuickAdapt)
		r.Post("/api/v1/plans/generate", s.handleGeneratePlan)
		r.Post("/api/v1/plans", s.handleSavePlan)
		r.Put("/api/v1/plans/{id}", s.handleUpdatePlan)
		r.Post("/api/v1/metrics", s.handleLogMetrics)
		r.Post("/api/v1/recommendations", s.handleSaveRecommendation)
		r.Post("/api/v1/sessions/{id}/complete", s.handleCompleteSession)
	})

	// Read endpoints (no auth, tsnet handles access when enabled)
	s.router.Get("/api/v1/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/active", s.handleGetActivePlan)
	s.router.Get("/api/v1/plans/{id}", s.handleGetPlan)
	s.router.Get("/api/v1/plans/{id}/events", s.handlePlanEvents)
	s.router.Get("/api/v1/metrics", s.handleListMetrics)
	s.router.Get("/api/v1/metrics/{date}", s.handleGetMetrics)
	s.router.Get("/api/v1/recommendations", s.handleListRecommendations)
}
