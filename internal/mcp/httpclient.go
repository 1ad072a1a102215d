package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/stridecoach/internal/adapt"
	"github.com/claude/stridecoach/internal/models"
	"github.com/claude/stridecoach/internal/storage"
)

// HTTPClient implements DataSource by calling the StrideCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: *HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The
// API key is sent on mutating requests.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, storage.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

func athleteParams(athleteID string) url.Values {
	v := url.Values{}
	v.Set("athlete_id", athleteID)
	return v
}

func (c *HTTPClient) SavePlan(ctx context.Context, plan *models.Plan) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/plans", nil, plan)
	return err
}

func (c *HTTPClient) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/plans/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return &plan, nil
}

func (c *HTTPClient) GetActivePlan(ctx context.Context, athleteID string) (*models.Plan, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/plans/active", athleteParams(athleteID), nil)
	if err != nil {
		return nil, err
	}
	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("httpclient: decode active plan: %w", err)
	}
	return &plan, nil
}

func (c *HTTPClient) UpdatePlanDoc(ctx context.Context, plan *models.Plan) error {
	_, err := c.do(ctx, http.MethodPut, "/api/v1/plans/"+plan.ID, nil, plan)
	return err
}

func (c *HTTPClient) GetDailyMetrics(ctx context.Context, athleteID string, date time.Time) (*models.DailyMetrics, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/metrics/"+date.Format("2006-01-02"), athleteParams(athleteID), nil)
	if err != nil {
		return nil, err
	}
	var m models.DailyMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("httpclient: decode metrics: %w", err)
	}
	return &m, nil
}

func (c *HTTPClient) UpsertDailyMetrics(ctx context.Context, athleteID string, m *models.DailyMetrics) error {
	payload := struct {
		AthleteID string `json:"athlete_id"`
		*models.DailyMetrics
	}{AthleteID: athleteID, DailyMetrics: m}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/metrics", nil, payload)
	return err
}

func (c *HTTPClient) InsertRecommendation(ctx context.Context, athleteID, sessionID string, rec *adapt.Recommendation) (string, error) {
	payload := struct {
		AthleteID      string               `json:"athlete_id"`
		SessionID      string               `json:"session_id"`
		Recommendation adapt.Recommendation `json:"recommendation"`
	}{AthleteID: athleteID, SessionID: sessionID, Recommendation: *rec}

	data, err := c.do(ctx, http.MethodPost, "/api/v1/recommendations", nil, payload)
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("httpclient: decode recommendation id: %w", err)
	}
	return out.ID, nil
}

func (c *HTTPClient) ListRecommendations(ctx context.Context, athleteID string, limit int) ([]storage.RecommendationRecord, error) {
	params := athleteParams(athleteID)
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	data, err := c.do(ctx, http.MethodGet, "/api/v1/recommendations", params, nil)
	if err != nil {
		return nil, err
	}
	var recs []storage.RecommendationRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("httpclient: decode recommendations: %w", err)
	}
	return recs, nil
}
