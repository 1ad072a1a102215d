package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/stridecoach/internal/adapt"
	"github.com/claude/stridecoach/internal/models"
	"github.com/claude/stridecoach/internal/plangen"
	"github.com/claude/stridecoach/internal/storage"
)

type adaptRequest struct {
	AthleteID string `json:"athlete_id"`
	SessionID string `json:"session_id"`
	Date      string `json:"date,omitempty"` // 2006-01-02, default today
	Apply     bool   `json:"apply,omitempty"`
}

type adaptResponse struct {
	RecommendationID string                `json:"recommendation_id,omitempty"`
	Recommendation   *adapt.Recommendation `json:"recommendation"`
	Applied          bool                  `json:"applied"`
}

// handleAdapt runs the full adaptation pipeline for one planned session:
// load the active plan, the day's metrics, and the recent completed
// sessions, then decide. With apply=true the modified session replaces
// the planned one in the stored plan.
func (s *Server) handleAdapt(w http.ResponseWriter, r *http.Request) {
	var req adaptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id required"})
		return
	}
	athleteID := athleteOrDefault(req.AthleteID)

	date := time.Now()
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
			return
		}
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

	session := findSession(plan, req.SessionID)
	if session == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found in active plan"})
		return
	}

	metrics, err := s.store.GetDailyMetrics(r.Context(), athleteID, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// No signals logged today: the engine handles empty metrics
			// with neutral scores and low confidence.
			metrics = &models.DailyMetrics{Date: date}
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	rec, err := s.adapter.AdaptSession(session, metrics, recentCompleted(plan, date), upcomingSessions(plan, date))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	recID, err := s.store.InsertRecommendation(r.Context(), athleteID, session.ID, rec)
	if err != nil {
		s.log.Error("storing recommendation", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	applied := false
	if req.Apply && rec.Modified != nil {
		*session = *rec.Modified
		if err := s.store.UpdatePlanDoc(r.Context(), plan); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		applied = true
	}

	writeJSON(w, http.StatusOK, adaptResponse{
		RecommendationID: recID,
		Recommendation:   rec,
		Applied:          applied,
	})
}

type quickAdaptRequest struct {
	Session       models.Session `json:"session"`
	RecoveryScore float64        `json:"recovery_score"`
	HasTime       bool           `json:"has_time"`
}

// handleQuickAdapt runs the reduced pipeline on an inline session.
// Nothing is persisted.
func (s *Server) handleQuickAdapt(w http.ResponseWriter, r *http.Request) {
	var req quickAdaptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	rec, err := s.adapter.QuickAdapt(&req.Session, req.RecoveryScore, req.HasTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type generatePlanRequest struct {
	AthleteID       string  `json:"athlete_id"`
	Distance        string  `json:"distance"` // "5K", "10K", "half_marathon"
	StartDate       string  `json:"start_date"`
	RaceDate        string  `json:"race_date"`
	SessionsPerWeek int     `json:"sessions_per_week"`
	PreferredDays   []int   `json:"preferred_days,omitempty"`
	TargetMinutes   float64 `json:"target_minutes"`
	VMAKmh          float64 `json:"vma_kmh,omitempty"`
	RestingHR       int     `json:"resting_hr,omitempty"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date: " + err.Error()})
		return
	}
	raceDate, err := time.Parse("2006-01-02", req.RaceDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid race_date: " + err.Error()})
		return
	}

	gen, err := plangen.NewGenerator(plangen.Request{
		AthleteID:       athleteOrDefault(req.AthleteID),
		Distance:        plangen.RaceDistance(req.Distance),
		StartDate:       startDate,
		RaceDate:        raceDate,
		SessionsPerWeek: req.SessionsPerWeek,
		PreferredDays:   req.PreferredDays,
		TargetMinutes:   req.TargetMinutes,
		VMAKmh:          req.VMAKmh,
		RestingHR:       req.RestingHR,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	plan, err := gen.Generate()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := s.store.SavePlan(r.Context(), plan); err != nil {
		s.log.Error("saving plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// handleSavePlan stores a plan built elsewhere (the remote MCP mode
// generates locally and persists through this endpoint).
func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	var plan models.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := plan.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	plan.AthleteID = athleteOrDefault(plan.AthleteID)

	if err := s.store.SavePlan(r.Context(), &plan); err != nil {
		s.log.Error("saving plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var plan models.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if id := chi.URLParam(r, "id"); plan.ID != id {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan id mismatch"})
		return
	}

	if err := s.store.UpdatePlanDoc(r.Context(), &plan); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGetActivePlan(w http.ResponseWriter, r *http.Request) {
	athleteID := athleteOrDefault(r.URL.Query().Get("athlete_id"))
	plan, err := s.store.GetActivePlan(r.Context(), athleteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active plan"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type saveRecommendationRequest struct {
	AthleteID      string               `json:"athlete_id"`
	SessionID      string               `json:"session_id"`
	Recommendation adapt.Recommendation `json:"recommendation"`
}

func (s *Server) handleSaveRecommendation(w http.ResponseWriter, r *http.Request) {
	var req saveRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id required"})
		return
	}

	id, err := s.store.InsertRecommendation(r.Context(), athleteOrDefault(req.AthleteID), req.SessionID, &req.Recommendation)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	athleteID := athleteOrDefault(r.URL.Query().Get("athlete_id"))
	plans, err := s.store.ListPlans(r.Context(), athleteID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePlanEvents(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.calendar.PlanEvents(plan))
}

type logMetricsRequest struct {
	AthleteID string `json:"athlete_id"`
	models.DailyMetrics
}

// handleLogMetrics upserts one day of metrics. The recovery score is
// computed on write so reads never need the scorer.
func (s *Server) handleLogMetrics(w http.ResponseWriter, r *http.Request) {
	var req logMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now().Truncate(24 * time.Hour)
	}
	if err := req.DailyMetrics.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.scorer.RecoveryScore(&req.DailyMetrics)

	athleteID := athleteOrDefault(req.AthleteID)
	if err := s.store.UpsertDailyMetrics(r.Context(), athleteID, &req.DailyMetrics); err != nil {
		s.log.Error("storing metrics", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, req.DailyMetrics)
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date: " + err.Error()})
		return
	}
	athleteID := athleteOrDefault(r.URL.Query().Get("athlete_id"))

	m, err := s.store.GetDailyMetrics(r.Context(), athleteID, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no metrics for date"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	athleteID := athleteOrDefault(r.URL.Query().Get("athlete_id"))

	rows, err := s.store.ListDailyMetrics(r.Context(), athleteID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	athleteID := athleteOrDefault(r.URL.Query().Get("athlete_id"))
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	recs, err := s.store.ListRecommendations(r.Context(), athleteID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func athleteOrDefault(id string) string {
	if id == "" {
		return DefaultAthleteID
	}
	return id
}

// findSession returns a pointer into the plan's weeks so an applied
// modification lands in the stored document.
func findSession(plan *models.Plan, id string) *models.Session {
	for wi := range plan.Weeks {
		for si := range plan.Weeks[wi].Sessions {
			if plan.Weeks[wi].Sessions[si].ID == id {
				return &plan.Weeks[wi].Sessions[si]
			}
		}
	}
	return nil
}

// recentCompleted collects sessions completed in the 7 days before the
// given date, for the sequencing analyzer.
func recentCompleted(plan *models.Plan, date time.Time) []models.Session {
	cutoff := date.AddDate(0, 0, -7)
	var out []models.Session
	for wi := range plan.Weeks {
		for _, sess := range plan.Weeks[wi].Sessions {
			if sess.Status == models.StatusCompleted &&
				!sess.CompletedAt.IsZero() &&
				sess.CompletedAt.After(cutoff) && sess.CompletedAt.Before(date.AddDate(0, 0, 1)) {
				out = append(out, sess)
			}
		}
	}
	return out
}

// upcomingSessions collects planned sessions in the 7 days after the date.
func upcomingSessions(plan *models.Plan, date time.Time) []models.Session {
	horizon := date.AddDate(0, 0, 7)
	var out []models.Session
	for wi := range plan.Weeks {
		for _, sess := range plan.Weeks[wi].Sessions {
			if sess.Status == models.StatusPlanned &&
				!sess.ScheduledDate.IsZero() &&
				sess.ScheduledDate.After(date) && sess.ScheduledDate.Before(horizon) {
				out = append(out, sess)
			}
		}
	}
	return out
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// End of day for date-only
		end = end.Add(24 * time.Hour)
	}
	return
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
