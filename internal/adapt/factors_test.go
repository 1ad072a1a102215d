package adapt

import (
	"testing"
	"time"

	"github.com/claude/stridecoach/internal/models"
)

func plannedSession(intensity models.Intensity) *models.Session {
	return &models.Session{
		ID:              "W3-S2",
		WeekNumber:      3,
		DayOfWeek:       4,
		Type:            models.SessionThreshold,
		Intensity:       intensity,
		Title:           "Threshold 3x10min",
		DurationMinutes: 60,
		DistanceKm:      12,
		Status:          models.StatusPlanned,
		CanBePostponed:  true,
		CanBeReplaced:   true,
		Structure: []models.PaceZone{
			{Description: "warm-up", DurationMinutes: 15, PaceMinPerKm: "6:00", Repetitions: 1},
			{Description: "threshold block", DurationMinutes: 10, PaceMinPerKm: "4:55", PaceMaxPerKm: "5:00", Repetitions: 3, RecoveryMinutes: 2},
			{Description: "cool-down", DurationMinutes: 10, PaceMinPerKm: "6:15", Repetitions: 1},
		},
	}
}

// TestAnalyzeAvailability verifies the three availability outcomes: neutral
// with no data, full when the day has room, penalized when it does not.
func TestAnalyzeAvailability(t *testing.T) {
	session := plannedSession(models.IntensityHard)

	tests := []struct {
		name string
		m    *models.DailyMetrics
		want float64
	}{
		{
			name: "no data is neutral",
			m:    &models.DailyMetrics{},
			want: 0.5,
		},
		{
			name: "enough free time",
			m: &models.DailyMetrics{
				CalendarBusyHours:  8,
				AvailableTimeSlots: []string{"18:00-20:00"},
			},
			want: 1.0,
		},
		{
			name: "fully booked day",
			m: &models.DailyMetrics{
				CalendarBusyHours:  15,
				AvailableTimeSlots: []string{"21:30-21:45"},
			},
			want: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := analyzeAvailability(session, tt.m)
			if got != tt.want {
				t.Errorf("availability = %.1f, want %.1f", got, tt.want)
			}
		})
	}
}

// TestAnalyzeAvailabilityMargin verifies the fixed 30-minute margin: a day
// with exactly the session duration free fails the check.
func TestAnalyzeAvailabilityMargin(t *testing.T) {
	session := plannedSession(models.IntensityModerate) // 60 min
	m := &models.DailyMetrics{
		CalendarBusyHours:  15, // 24-15-8 = 1h = 60 min available
		AvailableTimeSlots: []string{"19:00-20:00"},
	}

	got, _ := analyzeAvailability(session, m)
	if got != 0.3 {
		t.Errorf("availability = %.1f, want 0.3 (60 min free < 60+30 required)", got)
	}
}

// TestAnalyzeLoad verifies the ACWR band factors and the neutral default
// without load data.
func TestAnalyzeLoad(t *testing.T) {
	bounds := DefaultACWRBounds()

	tests := []struct {
		name string
		m    *models.DailyMetrics
		want float64
	}{
		{"no load data", &models.DailyMetrics{}, 0.7},
		{"optimal band", &models.DailyMetrics{TrainingLoad: &models.TrainingLoad{ACWR: 1.0}}, 1.0},
		{"optimal lower edge", &models.DailyMetrics{TrainingLoad: &models.TrainingLoad{ACWR: 0.8}}, 1.0},
		{"optimal upper edge", &models.DailyMetrics{TrainingLoad: &models.TrainingLoad{ACWR: 1.3}}, 1.0},
		{"undertrained", &models.DailyMetrics{TrainingLoad: &models.TrainingLoad{ACWR: 0.5}}, 0.9},
		{"mild overload", &models.DailyMetrics{TrainingLoad: &models.TrainingLoad{ACWR: 1.4}}, 0.6},
		{"severe overload", &models.DailyMetrics{TrainingLoad: &models.TrainingLoad{ACWR: 1.8}}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := analyzeLoad(tt.m, bounds)
			if got != tt.want {
				t.Errorf("load factor = %.1f, want %.1f", got, tt.want)
			}
		})
	}
}

func completedSession(id string, intensity models.Intensity, completedAt time.Time) models.Session {
	return models.Session{
		ID:              id,
		Type:            models.SessionIntervals,
		Intensity:       intensity,
		Title:           id,
		DurationMinutes: 50,
		Status:          models.StatusCompleted,
		CompletedAt:     completedAt,
	}
}

// TestAnalyzeSequence verifies the intensity-clustering penalties over a
// 48-hour window.
func TestAnalyzeSequence(t *testing.T) {
	now := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	yesterday := now.Add(-20 * time.Hour)
	twoDaysAgo := now.Add(-44 * time.Hour)
	lastWeek := now.Add(-6 * 24 * time.Hour)

	tests := []struct {
		name      string
		candidate models.Intensity
		recent    []models.Session
		want      float64
	}{
		{
			name:      "no history",
			candidate: models.IntensityHard,
			recent:    nil,
			want:      1.0,
		},
		{
			name:      "two intense in 48h before hard candidate",
			candidate: models.IntensityHard,
			recent: []models.Session{
				completedSession("a", models.IntensityHard, yesterday),
				completedSession("b", models.IntensityVeryHard, twoDaysAgo),
			},
			want: 0.4,
		},
		{
			name:      "one intense before very hard candidate",
			candidate: models.IntensityVeryHard,
			recent: []models.Session{
				completedSession("a", models.IntensityHard, yesterday),
			},
			want: 0.7,
		},
		{
			name:      "one intense before merely hard candidate",
			candidate: models.IntensityHard,
			recent: []models.Session{
				completedSession("a", models.IntensityHard, yesterday),
			},
			want: 1.0,
		},
		{
			name:      "intense sessions outside the window",
			candidate: models.IntensityVeryHard,
			recent: []models.Session{
				completedSession("a", models.IntensityHard, lastWeek),
				completedSession("b", models.IntensityVeryHard, lastWeek),
			},
			want: 1.0,
		},
		{
			name:      "easy history before hard candidate",
			candidate: models.IntensityHard,
			recent: []models.Session{
				completedSession("a", models.IntensityEasy, yesterday),
				completedSession("b", models.IntensityEasy, twoDaysAgo),
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := plannedSession(tt.candidate)
			got, _ := analyzeSequence(session, tt.recent, now)
			if got != tt.want {
				t.Errorf("sequence factor = %.1f, want %.1f", got, tt.want)
			}
		})
	}
}

// TestAnalyzeRecoveryEvidence verifies that the recovery analyzer reports
// each present signal.
func TestAnalyzeRecoveryEvidence(t *testing.T) {
	m := fullMetrics()
	NewScorer().RecoveryScore(m)

	factor, evidence := analyzeRecovery(m.RecoveryScore, m)

	if factor != m.RecoveryScore/100 {
		t.Errorf("factor = %.3f, want %.3f", factor, m.RecoveryScore/100)
	}
	// score line, sleep, HRV, ACWR
	if len(evidence) != 4 {
		t.Errorf("evidence lines = %d, want 4: %v", len(evidence), evidence)
	}
}
