package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/stridecoach/internal/storage"
)

func (h *handlers) activePlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plan, err := h.ds.GetActivePlan(ctx, AthleteIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return jsonResource(req.Params.URI, map[string]string{"status": "no active plan"})
		}
		return nil, err
	}
	return jsonResource(req.Params.URI, plan)
}

func (h *handlers) recentRecommendations(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	recs, err := h.ds.ListRecommendations(ctx, AthleteIDFromContext(ctx), 20)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, recs)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
