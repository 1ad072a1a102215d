package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/stridecoach/internal/feedback"
	"github.com/claude/stridecoach/internal/load"
	"github.com/claude/stridecoach/internal/models"
	"github.com/claude/stridecoach/internal/storage"
)

type completeSessionRequest struct {
	AthleteID             string    `json:"athlete_id"`
	CompletedAt           time.Time `json:"completed_at,omitempty"` // default now
	ActualDurationMinutes int       `json:"actual_duration_minutes,omitempty"`
	ActualDistanceKm      float64   `json:"actual_distance_km,omitempty"`
	AveragePace           string    `json:"average_pace,omitempty"`
	AverageHR             int       `json:"average_hr,omitempty"`
	MaxHR                 int       `json:"max_hr,omitempty"`
	RPE                   int       `json:"rpe,omitempty"`

	PositiveTags []feedback.Tag `json:"positive_tags,omitempty"`
	NegativeTags []feedback.Tag `json:"negative_tags,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

type completeSessionResponse struct {
	Session       *models.Session `json:"session"`
	Load          load.Summary    `json:"load"`
	RecoveryScore float64         `json:"recovery_score,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	ForceRest     bool            `json:"force_rest"`
}

// handleCompleteSession records a session's actuals, recomputes the
// athlete's workload state from every completed session in the plan, and
// folds the reported feedback plus the fresh effort into today's
// recovery score.
func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	var req completeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	athleteID := athleteOrDefault(req.AthleteID)
	completedAt := req.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	plan, err := s.store.GetActivePlan(r.Context(), athleteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active plan"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	session := findSession(plan, chi.URLParam(r, "id"))
	if session == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found in active plan"})
		return
	}

	session.Status = models.StatusCompleted
	session.CompletedAt = completedAt
	session.ActualDurationMinutes = req.ActualDurationMinutes
	session.ActualDistanceKm = req.ActualDistanceKm
	session.AveragePace = req.AveragePace
	session.AverageHR = req.AverageHR
	session.MaxHR = req.MaxHR
	session.RPE = req.RPE
	if err := session.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := s.store.UpdatePlanDoc(r.Context(), plan); err != nil {
		s.log.Error("updating plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Rebuild the workload state from every completed session
	var activities []load.Activity
	for wi := range plan.Weeks {
		for si := range plan.Weeks[wi].Sessions {
			if plan.Weeks[wi].Sessions[si].Status == models.StatusCompleted {
				activities = append(activities, load.FromSession(&plan.Weeks[wi].Sessions[si]))
			}
		}
	}
	summary := load.Summarize(activities, completedAt, load.DefaultBounds())

	day := time.Date(completedAt.Year(), completedAt.Month(), completedAt.Day(), 0, 0, 0, 0, completedAt.Location())
	metrics, err := s.store.GetDailyMetrics(r.Context(), athleteID, day)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		metrics = &models.DailyMetrics{Date: day}
	}
	metrics.TrainingLoad = summary.Metrics(day)

	fb := feedback.Feedback{
		ActivityDate: completedAt,
		ActivityID:   session.ID,
		Positive:     req.PositiveTags,
		Negative:     req.NegativeTags,
		Notes:        req.Notes,
	}
	impact := feedback.RecentImpact([]feedback.Feedback{fb}, 2)

	resp := completeSessionResponse{
		Session:   session,
		Load:      summary,
		Warnings:  impact.Warnings,
		ForceRest: feedback.ShouldForceRest([]feedback.Feedback{fb}),
	}

	if metrics.RecoveryScore > 0 {
		adjusted := feedback.AdjustScore(metrics.RecoveryScore, impact)
		hoursSince := time.Since(completedAt).Hours()
		adjusted, _ = load.ResidualPenalty(adjusted, load.Score(load.FromSession(session)), hoursSince)
		metrics.RecoveryScore = adjusted
		resp.RecoveryScore = adjusted
	}

	if err := s.store.UpsertDailyMetrics(r.Context(), athleteID, metrics); err != nil {
		s.log.Error("storing metrics", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
