package adapt

import (
	"math"
	"testing"
	"time"

	"github.com/claude/stridecoach/internal/models"
)

func fullMetrics() *models.DailyMetrics {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &models.DailyMetrics{
		Date: day,
		Sleep: &models.Sleep{
			Date:       day,
			TotalHours: 8,
			Quality:    models.SleepGood,
			Score:      90,
		},
		HRV:       &models.HRV{Date: day, Ms: 60},
		RestingHR: &models.RestingHR{Date: day, BPM: 45},
		TrainingLoad: &models.TrainingLoad{
			Date:        day,
			AcuteLoad:   250,
			ChronicLoad: 250,
		},
		Subjective: &models.Subjective{
			Date:       day,
			Motivation: 5,
			Energy:     5,
			Mood:       5,
			Soreness:   1,
		},
		CalendarBusyHours:  6,
		AvailableTimeSlots: []string{"07:00-08:30", "18:00-20:00"},
	}
}

// TestRecoveryScoreFullData verifies that strong signals across every
// component produce an optimal-tier score.
func TestRecoveryScoreFullData(t *testing.T) {
	m := fullMetrics()
	score := NewScorer().RecoveryScore(m)

	if score < 85 || score > 100 {
		t.Errorf("score = %.1f, want >= 85 (optimal)", score)
	}
	if m.Readiness != models.ReadinessOptimal {
		t.Errorf("readiness = %s, want optimal", m.Readiness)
	}
	if !m.HasRecoveryScore {
		t.Error("HasRecoveryScore not set after scoring")
	}
}

// TestRecoveryScoreNeutralWhenEmpty verifies the neutral 50 default when no
// component is present.
func TestRecoveryScoreNeutralWhenEmpty(t *testing.T) {
	m := &models.DailyMetrics{Date: time.Now()}
	score := NewScorer().RecoveryScore(m)

	if score != 50 {
		t.Errorf("score = %.1f, want 50", score)
	}
	if m.Readiness != models.ReadinessCompromised {
		t.Errorf("readiness = %s, want compromised", m.Readiness)
	}
}

// TestRecoveryScoreReweightsMissing verifies that missing components are
// excluded from both numerator and denominator: with only sleep present the
// score equals the sleep component alone.
func TestRecoveryScoreReweightsMissing(t *testing.T) {
	m := &models.DailyMetrics{
		Date:  time.Now(),
		Sleep: &models.Sleep{TotalHours: 7, Quality: models.SleepGood, Score: 80},
	}
	score := NewScorer().RecoveryScore(m)

	if math.Abs(score-80) > 0.05 {
		t.Errorf("score = %.1f, want 80 (sleep component alone)", score)
	}
}

// TestRecoveryScoreIdempotent verifies that scoring an unmodified aggregate
// twice yields the same result.
func TestRecoveryScoreIdempotent(t *testing.T) {
	m := fullMetrics()
	sc := NewScorer()

	first := sc.RecoveryScore(m)
	second := sc.RecoveryScore(m)

	if first != second {
		t.Errorf("scores differ across calls: %.1f then %.1f", first, second)
	}
}

// TestRecoveryScoreBounds verifies the score stays in [0,100] for extreme
// inputs in both directions.
func TestRecoveryScoreBounds(t *testing.T) {
	low := &models.DailyMetrics{
		Date:         time.Now(),
		Sleep:        &models.Sleep{TotalHours: 2, Quality: models.SleepPoor, Score: 0},
		HRV:          &models.HRV{Ms: 10},
		RestingHR:    &models.RestingHR{BPM: 95},
		TrainingLoad: &models.TrainingLoad{AcuteLoad: 500, ChronicLoad: 100},
		Subjective:   &models.Subjective{Motivation: 1, Energy: 1, Mood: 1, Soreness: 5},
	}
	high := &models.DailyMetrics{
		Date:         time.Now(),
		Sleep:        &models.Sleep{TotalHours: 9, Quality: models.SleepExcellent, Score: 150},
		HRV:          &models.HRV{Ms: 120},
		RestingHR:    &models.RestingHR{BPM: 38},
		TrainingLoad: &models.TrainingLoad{AcuteLoad: 250, ChronicLoad: 250},
		Subjective:   &models.Subjective{Motivation: 5, Energy: 5, Mood: 5, Soreness: 1},
	}

	sc := NewScorer()
	for name, m := range map[string]*models.DailyMetrics{"low": low, "high": high} {
		score := sc.RecoveryScore(m)
		if score < 0 || score > 100 {
			t.Errorf("%s: score = %.1f, out of [0,100]", name, score)
		}
	}
}

// TestSleepComponentMonotonic verifies that a better device sleep score
// never lowers the sleep component.
func TestSleepComponentMonotonic(t *testing.T) {
	prev := -1.0
	for score := 0; score <= 150; score += 10 {
		s := &models.Sleep{Score: score}
		got := s.NormalizedScore()
		if got < prev {
			t.Fatalf("sleep component decreased: score %d gives %.2f, previous %.2f", score, got, prev)
		}
		prev = got
	}
}

// TestLoadComponentMonotonicPastOptimal verifies the triangular ACWR score
// never increases once the ratio exceeds the optimal band.
func TestLoadComponentMonotonicPastOptimal(t *testing.T) {
	prev := 2.0
	for acwr := 1.3; acwr <= 2.5; acwr += 0.1 {
		tl := &models.TrainingLoad{ACWR: acwr}
		got := tl.NormalizedScore()
		if got > prev+1e-9 {
			t.Fatalf("load score increased past optimal band: ACWR %.1f gives %.3f, previous %.3f", acwr, got, prev)
		}
		prev = got
	}
}

// TestReadinessBands verifies the fixed readiness cut points, including the
// boundary values mapping to the higher tier.
func TestReadinessBands(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Readiness
	}{
		{100, models.ReadinessOptimal},
		{85, models.ReadinessOptimal},
		{84.9, models.ReadinessGood},
		{70, models.ReadinessGood},
		{69.9, models.ReadinessOK},
		{55, models.ReadinessOK},
		{54.9, models.ReadinessCompromised},
		{40, models.ReadinessCompromised},
		{39.9, models.ReadinessPoor},
		{0, models.ReadinessPoor},
	}
	for _, tt := range tests {
		if got := models.ReadinessForScore(tt.score); got != tt.want {
			t.Errorf("ReadinessForScore(%.1f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
