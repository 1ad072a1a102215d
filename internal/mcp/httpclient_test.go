package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/stridecoach/internal/adapt"
	"github.com/claude/stridecoach/internal/models"
	"github.com/claude/stridecoach/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by path. Verifies the HTTP client sends correct paths
// and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestGetActivePlan verifies the athlete query param and response decoding.
func TestGetActivePlan(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans/active": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("athlete_id"); got != "self" {
				t.Errorf("athlete_id=%q, want self", got)
			}
			writeTestJSON(t, w, models.Plan{ID: "plan-1", Name: "Half-marathon plan", IsActive: true})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "key")
	plan, err := client.GetActivePlan(context.Background(), "self")
	if err != nil {
		t.Fatalf("GetActivePlan: %v", err)
	}
	if plan.ID != "plan-1" {
		t.Errorf("plan id = %q, want plan-1", plan.ID)
	}
}

// TestGetActivePlanNotFound verifies 404 maps to storage.ErrNotFound so
// callers can branch on it the same way they do against the local DB.
func TestGetActivePlanNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans/active": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "key")
	_, err := client.GetActivePlan(context.Background(), "self")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want storage.ErrNotFound", err)
	}
}

// TestSavePlan verifies the API key header and request body on mutating calls.
func TestSavePlan(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.Header.Get("X-API-Key"); got != "key" {
				t.Errorf("X-API-Key = %q, want key", got)
			}
			var plan models.Plan
			if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if plan.ID != "plan-1" {
				t.Errorf("plan id = %q", plan.ID)
			}
			w.WriteHeader(http.StatusCreated)
			writeTestJSON(t, w, plan)
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "key")
	if err := client.SavePlan(context.Background(), &models.Plan{ID: "plan-1"}); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
}

// TestGetDailyMetrics verifies the date lands in the path.
func TestGetDailyMetrics(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/metrics/2026-03-05": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.DailyMetrics{Date: day, RecoveryScore: 71.5})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "key")
	m, err := client.GetDailyMetrics(context.Background(), "self", day)
	if err != nil {
		t.Fatalf("GetDailyMetrics: %v", err)
	}
	if m.RecoveryScore != 71.5 {
		t.Errorf("recovery score = %.1f, want 71.5", m.RecoveryScore)
	}
}

// TestInsertRecommendation verifies the payload shape and id decoding.
func TestInsertRecommendation(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/recommendations": func(w http.ResponseWriter, r *http.Request) {
			var payload struct {
				AthleteID      string               `json:"athlete_id"`
				SessionID      string               `json:"session_id"`
				Recommendation adapt.Recommendation `json:"recommendation"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.SessionID != "W1-S1" {
				t.Errorf("session_id = %q, want W1-S1", payload.SessionID)
			}
			if payload.Recommendation.Action != adapt.ActionReduce {
				t.Errorf("action = %s, want reduce", payload.Recommendation.Action)
			}
			w.WriteHeader(http.StatusCreated)
			writeTestJSON(t, w, map[string]string{"id": "rec-9"})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "key")
	id, err := client.InsertRecommendation(context.Background(), "self", "W1-S1",
		&adapt.Recommendation{Action: adapt.ActionReduce, Reason: "moderate recovery"})
	if err != nil {
		t.Fatalf("InsertRecommendation: %v", err)
	}
	if id != "rec-9" {
		t.Errorf("id = %q, want rec-9", id)
	}
}

// TestListRecommendations verifies the limit query param.
func TestListRecommendations(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/recommendations": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "20" {
				t.Errorf("limit=%q, want 20", got)
			}
			writeTestJSON(t, w, []storage.RecommendationRecord{
				{ID: "rec-1", SessionID: "W1-S1", Action: adapt.ActionMaintain},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "key")
	recs, err := client.ListRecommendations(context.Background(), "self", 20)
	if err != nil {
		t.Fatalf("ListRecommendations: %v", err)
	}
	if len(recs) != 1 || recs[0].SessionID != "W1-S1" {
		t.Errorf("recs = %+v", recs)
	}
}
