package mcp

import (
	"context"
	"time"

	"github.com/claude/stridecoach/internal/adapt"
	"github.com/claude/stridecoach/internal/models"
	"github.com/claude/stridecoach/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	SavePlan(ctx context.Context, plan *models.Plan) error
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	GetActivePlan(ctx context.Context, athleteID string) (*models.Plan, error)
	UpdatePlanDoc(ctx context.Context, plan *models.Plan) error
	GetDailyMetrics(ctx context.Context, athleteID string, date time.Time) (*models.DailyMetrics, error)
	UpsertDailyMetrics(ctx context.Context, athleteID string, m *models.DailyMetrics) error
	InsertRecommendation(ctx context.Context, athleteID, sessionID string, rec *adapt.Recommendation) (string, error)
	ListRecommendations(ctx context.Context, athleteID string, limit int) ([]storage.RecommendationRecord, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
