package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/stridecoach/internal/models"
	"github.com/claude/stridecoach/internal/plangen"
	"github.com/claude/stridecoach/internal/storage"
)

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// --- Tool definitions ---

var toolAdaptSession = mcp.NewTool("adapt_session",
	mcp.WithDescription("Run the adaptation engine on a planned session: combines recovery score, training load, recent session sequencing, and calendar availability into a keep/reduce/replace/postpone/cancel recommendation. Reads the active plan and the day's logged metrics."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID within the active plan (e.g. 'W3-S2')")),
	mcp.WithString("date", mcp.Description("Metrics date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithBoolean("apply", mcp.Description("Apply the modified session back into the stored plan. Defaults to false.")),
)

var toolQuickAdapt = mcp.NewTool("quick_adapt",
	mcp.WithDescription("Reduced adaptation check when only a recovery score and a time flag are known. Returns a low-confidence recommendation for a session in the active plan."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID within the active plan")),
	mcp.WithNumber("recovery_score", mcp.Required(), mcp.Description("Recovery score 0-100")),
	mcp.WithBoolean("has_time", mcp.Description("Whether the athlete has time for the full session. Defaults to true.")),
)

var toolGeneratePlan = mcp.NewTool("generate_plan",
	mcp.WithDescription("Generate and store a structured multi-week training plan for a race goal. The new plan becomes the active one."),
	mcp.WithString("distance", mcp.Required(), mcp.Description("Race distance"), mcp.Enum("5K", "10K", "half_marathon")),
	mcp.WithString("start_date", mcp.Required(), mcp.Description("Training start (YYYY-MM-DD); snapped to the preceding Monday")),
	mcp.WithString("race_date", mcp.Required(), mcp.Description("Race day (YYYY-MM-DD); at least 8 weeks after the start")),
	mcp.WithNumber("target_minutes", mcp.Description("Goal finish time in minutes")),
	mcp.WithNumber("vma_kmh", mcp.Description("Maximal aerobic speed in km/h, when known")),
	mcp.WithNumber("sessions_per_week", mcp.Description("Training days per week. Defaults to 4.")),
	mcp.WithNumber("resting_hr", mcp.Description("Resting heart rate, used to tune easy paces")),
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Fetch a training plan with all weeks and sessions. Without an id, returns the active plan."),
	mcp.WithString("id", mcp.Description("Plan ID. Defaults to the active plan.")),
)

var toolGetDailyMetrics = mcp.NewTool("get_daily_metrics",
	mcp.WithDescription("Fetch one day of logged recovery metrics including the computed recovery score."),
	mcp.WithString("date", mcp.Required(), mcp.Description("Date (YYYY-MM-DD)")),
)

var toolLogMetrics = mcp.NewTool("log_metrics",
	mcp.WithDescription("Log (or overwrite) a day's recovery metrics. Omitted groups stay absent and lower the adaptation confidence. The recovery score is computed on write."),
	mcp.WithString("date", mcp.Description("Date (YYYY-MM-DD). Defaults to today.")),
	mcp.WithNumber("sleep_hours", mcp.Description("Total sleep in hours")),
	mcp.WithNumber("sleep_score", mcp.Description("Sleep score 0-150")),
	mcp.WithString("sleep_quality", mcp.Description("Sleep quality"), mcp.Enum("poor", "fair", "good", "excellent")),
	mcp.WithNumber("hrv_ms", mcp.Description("Heart rate variability in ms")),
	mcp.WithNumber("resting_hr", mcp.Description("Resting heart rate in bpm")),
	mcp.WithNumber("acute_load", mcp.Description("7-day training load")),
	mcp.WithNumber("chronic_load", mcp.Description("28-day average weekly training load")),
	mcp.WithNumber("motivation", mcp.Description("Motivation 1-5")),
	mcp.WithNumber("energy", mcp.Description("Energy 1-5")),
	mcp.WithNumber("mood", mcp.Description("Mood 1-5")),
	mcp.WithNumber("soreness", mcp.Description("Muscle soreness 1-5 (5 = very sore)")),
	mcp.WithNumber("busy_hours", mcp.Description("Calendar busy hours today")),
)

// --- Tool handlers ---

func (h *handlers) adaptSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}

	date := time.Now()
	if s := req.GetString("date", ""); s != "" {
		date, err = parseDate(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date: " + err.Error()), nil
		}
	}
	athleteID := AthleteIDFromContext(ctx)

	plan, err := h.ds.GetActivePlan(ctx, athleteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError("no active plan"), nil
		}
		h.log.Error("mcp adapt_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	session := findSession(plan, sessionID)
	if session == nil {
		return mcp.NewToolResultError("session " + sessionID + " not found in active plan"), nil
	}

	metrics, err := h.ds.GetDailyMetrics(ctx, athleteID, date)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.log.Error("mcp adapt_session", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		metrics = &models.DailyMetrics{Date: date}
	}

	rec, err := h.adapter.AdaptSession(session, metrics, recentCompleted(plan, date), nil)
	if err != nil {
		return mcp.NewToolResultError("adaptation failed: " + err.Error()), nil
	}

	if _, err := h.ds.InsertRecommendation(ctx, athleteID, session.ID, rec); err != nil {
		h.log.Error("mcp adapt_session: storing recommendation", "error", err)
	}

	if req.GetBool("apply", false) && rec.Modified != nil {
		*session = *rec.Modified
		if err := h.ds.UpdatePlanDoc(ctx, plan); err != nil {
			return mcp.NewToolResultError("applying modification: " + err.Error()), nil
		}
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) quickAdapt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}
	score, err := req.RequireFloat("recovery_score")
	if err != nil {
		return mcp.NewToolResultError("recovery_score parameter is required"), nil
	}

	athleteID := AthleteIDFromContext(ctx)
	plan, err := h.ds.GetActivePlan(ctx, athleteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError("no active plan"), nil
		}
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	session := findSession(plan, sessionID)
	if session == nil {
		return mcp.NewToolResultError("session " + sessionID + " not found in active plan"), nil
	}

	rec, err := h.adapter.QuickAdapt(session, score, req.GetBool("has_time", true))
	if err != nil {
		return mcp.NewToolResultError("adaptation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) generatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	distance, err := req.RequireString("distance")
	if err != nil {
		return mcp.NewToolResultError("distance parameter is required"), nil
	}
	startStr, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError("start_date parameter is required"), nil
	}
	raceStr, err := req.RequireString("race_date")
	if err != nil {
		return mcp.NewToolResultError("race_date parameter is required"), nil
	}

	startDate, err := parseDate(startStr)
	if err != nil {
		return mcp.NewToolResultError("invalid start_date: " + err.Error()), nil
	}
	raceDate, err := parseDate(raceStr)
	if err != nil {
		return mcp.NewToolResultError("invalid race_date: " + err.Error()), nil
	}

	gen, err := plangen.NewGenerator(plangen.Request{
		AthleteID:       AthleteIDFromContext(ctx),
		Distance:        plangen.RaceDistance(distance),
		StartDate:       startDate,
		RaceDate:        raceDate,
		SessionsPerWeek: req.GetInt("sessions_per_week", 0),
		TargetMinutes:   req.GetFloat("target_minutes", 0),
		VMAKmh:          req.GetFloat("vma_kmh", 0),
		RestingHR:       req.GetInt("resting_hr", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	plan, err := gen.Generate()
	if err != nil {
		return mcp.NewToolResultError("generation failed: " + err.Error()), nil
	}
	if err := h.ds.SavePlan(ctx, plan); err != nil {
		h.log.Error("mcp generate_plan", "error", err)
		return mcp.NewToolResultError("saving plan: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		plan *models.Plan
		err  error
	)
	if id := req.GetString("id", ""); id != "" {
		plan, err = h.ds.GetPlan(ctx, id)
	} else {
		plan, err = h.ds.GetActivePlan(ctx, AthleteIDFromContext(ctx))
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError("plan not found"), nil
		}
		h.log.Error("mcp get_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDailyMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dateStr, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return mcp.NewToolResultError("invalid date: " + err.Error()), nil
	}

	m, err := h.ds.GetDailyMetrics(ctx, AthleteIDFromContext(ctx), date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return mcp.NewToolResultError("no metrics logged for " + dateStr), nil
		}
		h.log.Error("mcp get_daily_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(m)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := time.Now().Truncate(24 * time.Hour)
	if s := req.GetString("date", ""); s != "" {
		var err error
		date, err = parseDate(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date: " + err.Error()), nil
		}
	}

	m := &models.DailyMetrics{Date: date}

	if hours := req.GetFloat("sleep_hours", 0); hours > 0 {
		m.Sleep = &models.Sleep{
			Date:       date,
			TotalHours: hours,
			Score:      req.GetInt("sleep_score", 0),
			Quality:    models.SleepQuality(req.GetString("sleep_quality", "fair")),
		}
	}
	if ms := req.GetFloat("hrv_ms", 0); ms > 0 {
		m.HRV = &models.HRV{Date: date, Ms: ms}
	}
	if bpm := req.GetInt("resting_hr", 0); bpm > 0 {
		m.RestingHR = &models.RestingHR{Date: date, BPM: bpm}
	}
	if acute := req.GetFloat("acute_load", 0); acute > 0 {
		m.TrainingLoad = &models.TrainingLoad{
			Date:        date,
			AcuteLoad:   acute,
			ChronicLoad: req.GetFloat("chronic_load", 0),
		}
	}
	if motivation := req.GetInt("motivation", 0); motivation > 0 {
		m.Subjective = &models.Subjective{
			Date:       date,
			Motivation: motivation,
			Energy:     req.GetInt("energy", motivation),
			Mood:       req.GetInt("mood", motivation),
			Soreness:   req.GetInt("soreness", 1),
		}
	}
	m.CalendarBusyHours = req.GetInt("busy_hours", 0)

	if err := m.Validate(); err != nil {
		return mcp.NewToolResultError("invalid metrics: " + err.Error()), nil
	}
	h.scorer.RecoveryScore(m)

	if err := h.ds.UpsertDailyMetrics(ctx, AthleteIDFromContext(ctx), m); err != nil {
		h.log.Error("mcp log_metrics", "error", err)
		return mcp.NewToolResultError("storing metrics: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(m)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// findSession returns a pointer into the plan so an applied modification
// lands in the stored document.
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
