// Package mcp exposes the training assistant as MCP tools so LLM
// clients can query plans, log metrics, and run the adaptation engine.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/stridecoach/internal/adapt"
)

// DefaultAthleteID scopes tool calls that do not name an athlete.
const DefaultAthleteID = "self"

type contextKey int

const athleteIDKey contextKey = iota

// AthleteIDFromContext extracts the athlete ID injected by the transport layer.
func AthleteIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(athleteIDKey).(string); ok && id != "" {
		return id
	}
	return DefaultAthleteID
}

// WithAthleteID returns a context with the given athlete ID.
func WithAthleteID(ctx context.Context, athleteID string) context.Context {
	return context.WithValue(ctx, athleteIDKey, athleteID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, adapter *adapt.Adapter, scorer *adapt.Scorer, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("StrideCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("StrideCoach running-training server. Generate race plans, log daily recovery metrics, and adapt planned sessions to the athlete's current state. All data is scoped to the athlete."),
	)

	h := &handlers{ds: ds, adapter: adapter, scorer: scorer, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolAdaptSession, Handler: h.adaptSession},
		server.ServerTool{Tool: toolQuickAdapt, Handler: h.quickAdapt},
		server.ServerTool{Tool: toolGeneratePlan, Handler: h.generatePlan},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolGetDailyMetrics, Handler: h.getDailyMetrics},
		server.ServerTool{Tool: toolLogMetrics, Handler: h.logMetrics},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActivePlan, Handler: h.activePlan},
		server.ServerResource{Resource: resRecentRecommendations, Handler: h.recentRecommendations},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	adapter *adapt.Adapter
	scorer  *adapt.Scorer
	log     *slog.Logger
}

// --- Resource definitions ---

var resActivePlan = mcp.NewResource(
	"stridecoach://active_plan",
	"Active Training Plan",
	mcp.WithResourceDescription("The athlete's currently active plan with all weeks and sessions"),
	mcp.WithMIMEType("application/json"),
)

var resRecentRecommendations = mcp.NewResource(
	"stridecoach://recent_recommendations",
	"Recent Recommendations",
	mcp.WithResourceDescription("The last 20 adaptation decisions with reasons and evidence"),
	mcp.WithMIMEType("application/json"),
)
