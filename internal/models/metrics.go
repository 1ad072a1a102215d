package models

import (
	"fmt"
	"math"
	"time"
)

// Readiness is the display tier derived from the recovery score.
type Readiness string

const (
	ReadinessPoor        Readiness = "poor"
	ReadinessCompromised Readiness = "compromised"
	ReadinessOK          Readiness = "ok"
	ReadinessGood        Readiness = "good"
	ReadinessOptimal     Readiness = "optimal"
)

// ReadinessForScore maps a 0-100 recovery score to its tier.
func ReadinessForScore(score float64) Readiness {
	switch {
	case score >= 85:
		return ReadinessOptimal
	case score >= 70:
		return ReadinessGood
	case score >= 55:
		return ReadinessOK
	case score >= 40:
		return ReadinessCompromised
	default:
		return ReadinessPoor
	}
}

// SleepQuality is the wearable-reported quality tier.
type SleepQuality string

const (
	SleepPoor      SleepQuality = "poor"
	SleepFair      SleepQuality = "fair"
	SleepGood      SleepQuality = "good"
	SleepExcellent SleepQuality = "excellent"
)

// Sleep holds one night's sleep record. Score is the device score; Garmin
// can report above 100, so the cap lives in NormalizedScore.
type Sleep struct {
	Date       time.Time    `json:"date"`
	TotalHours float64      `json:"total_hours"`
	DeepHours  float64      `json:"deep_hours,omitempty"`
	REMHours   float64      `json:"rem_hours,omitempty"`
	Quality    SleepQuality `json:"quality"`
	Score      int          `json:"score"`
	Source     string       `json:"source,omitempty"`
}

// Validate checks the raw device ranges.
func (s *Sleep) Validate() error {
	if s.TotalHours < 0 || s.TotalHours > 24 {
		return fmt.Errorf("sleep: total_hours = %.1f, want 0..24", s.TotalHours)
	}
	if s.Score < 0 || s.Score > 150 {
		return fmt.Errorf("sleep: score = %d, want 0..150", s.Score)
	}
	return nil
}

// NormalizedScore maps the device score to [0,1], capped at 1.
func (s *Sleep) NormalizedScore() float64 {
	return clamp01(float64(s.Score) / 100)
}

// HRV is a heart-rate-variability (RMSSD) reading.
type HRV struct {
	Date   time.Time `json:"date"`
	Ms     float64   `json:"hrv_ms"`
	Source string    `json:"source,omitempty"`
}

// Validate rejects non-positive readings.
func (h *HRV) Validate() error {
	if h.Ms <= 0 {
		return fmt.Errorf("hrv: hrv_ms = %.1f, want > 0", h.Ms)
	}
	return nil
}

// NormalizedScore compares the reading to a personal baseline: at or above
// baseline scores 1.0, proportionally less below.
func (h *HRV) NormalizedScore(baselineMs float64) float64 {
	if baselineMs == 0 {
		return 0.5
	}
	return clamp01(h.Ms / baselineMs)
}

// RestingHR is a resting heart-rate reading.
type RestingHR struct {
	Date   time.Time `json:"date"`
	BPM    int       `json:"rhr_bpm"`
	Source string    `json:"source,omitempty"`
}

// Validate checks physiological bounds.
func (r *RestingHR) Validate() error {
	if r.BPM <= 30 || r.BPM >= 120 {
		return fmt.Errorf("rhr: rhr_bpm = %d, want 31..119", r.BPM)
	}
	return nil
}

// NormalizedScore inverts the ratio against baseline: a lower resting HR
// than baseline means better recovery and scores 1.0.
func (r *RestingHR) NormalizedScore(baselineBPM int) float64 {
	if baselineBPM == 0 || r.BPM == 0 {
		return 0.5
	}
	return clamp01(float64(baselineBPM) / float64(r.BPM))
}

// TrainingLoad holds the acute/chronic load pair and the derived ACWR.
type TrainingLoad struct {
	Date        time.Time `json:"date"`
	AcuteLoad   float64   `json:"acute_load"`
	ChronicLoad float64   `json:"chronic_load"`
	ACWR        float64   `json:"acwr,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// CalculateACWR derives and caches the acute:chronic ratio. A zero chronic
// load yields the neutral ratio 1.0.
func (t *TrainingLoad) CalculateACWR() float64 {
	if t.ACWR != 0 {
		return t.ACWR
	}
	if t.ChronicLoad == 0 {
		t.ACWR = 1.0
		return t.ACWR
	}
	t.ACWR = math.Round(t.AcuteLoad/t.ChronicLoad*100) / 100
	return t.ACWR
}

// NormalizedScore is a triangular score peaking at 1.0 inside the optimal
// ACWR band [0.8,1.3] and decaying linearly outside it.
func (t *TrainingLoad) NormalizedScore() float64 {
	acwr := t.CalculateACWR()
	switch {
	case acwr >= 0.8 && acwr <= 1.3:
		return 1.0
	case acwr < 0.8:
		return clamp01(acwr / 0.8)
	default:
		return clamp01(1.0 - (acwr-1.3)/0.7)
	}
}

// Subjective holds athlete-reported wellness scales, all 1-5.
type Subjective struct {
	Date       time.Time `json:"date"`
	Motivation int       `json:"motivation,omitempty"`
	Energy     int       `json:"energy,omitempty"`
	Mood       int       `json:"mood,omitempty"`
	Soreness   int       `json:"muscle_soreness,omitempty"`
}

// Validate checks that every reported scale is within 1-5. Zero means
// not reported.
func (s *Subjective) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"motivation", s.Motivation},
		{"energy", s.Energy},
		{"mood", s.Mood},
		{"muscle_soreness", s.Soreness},
	} {
		if f.v != 0 && (f.v < 1 || f.v > 5) {
			return fmt.Errorf("subjective: %s = %d, want 1..5", f.name, f.v)
		}
	}
	return nil
}

// NormalizedScore averages the reported scales in [0,1]; soreness is
// inverted because higher soreness means worse recovery. Returns the
// neutral 0.5 when nothing was reported.
func (s *Subjective) NormalizedScore() float64 {
	var scores []float64
	if s.Motivation > 0 {
		scores = append(scores, float64(s.Motivation)/5)
	}
	if s.Energy > 0 {
		scores = append(scores, float64(s.Energy)/5)
	}
	if s.Mood > 0 {
		scores = append(scores, float64(s.Mood)/5)
	}
	if s.Soreness > 0 {
		scores = append(scores, 1-float64(s.Soreness-1)/4)
	}
	if len(scores) == 0 {
		return 0.5
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}

// DailyMetrics bundles one day's physiological and contextual signals.
// All components are optional; the recovery score degrades gracefully
// as data goes missing.
type DailyMetrics struct {
	Date time.Time `json:"date"`

	Sleep        *Sleep        `json:"sleep,omitempty"`
	HRV          *HRV          `json:"hrv,omitempty"`
	RestingHR    *RestingHR    `json:"rhr,omitempty"`
	TrainingLoad *TrainingLoad `json:"training_load,omitempty"`
	Subjective   *Subjective   `json:"subjective,omitempty"`

	CalendarBusyHours  int      `json:"calendar_busy_hours,omitempty"`
	AvailableTimeSlots []string `json:"available_time_slots,omitempty"` // "HH:MM-HH:MM"

	// RecoveryScore is cached by the scorer; zero plus HasRecoveryScore
	// false means not yet computed.
	RecoveryScore    float64   `json:"recovery_score,omitempty"`
	HasRecoveryScore bool      `json:"-"`
	Readiness        Readiness `json:"readiness,omitempty"`
}

// Validate validates every present component.
func (m *DailyMetrics) Validate() error {
	if m.Sleep != nil {
		if err := m.Sleep.Validate(); err != nil {
			return err
		}
	}
	if m.HRV != nil {
		if err := m.HRV.Validate(); err != nil {
			return err
		}
	}
	if m.RestingHR != nil {
		if err := m.RestingHR.Validate(); err != nil {
			return err
		}
	}
	if m.Subjective != nil {
		if err := m.Subjective.Validate(); err != nil {
			return err
		}
	}
	if m.RecoveryScore < 0 || m.RecoveryScore > 100 {
		return fmt.Errorf("metrics: recovery_score = %.1f, want 0..100", m.RecoveryScore)
	}
	return nil
}

// HasAvailableTime reports whether the day leaves room for a block of the
// given length. Simplified day model: 24h minus busy hours minus a fixed
// 8h of sleep.
func (m *DailyMetrics) HasAvailableTime(requiredMinutes int) bool {
	availableHours := 24 - m.CalendarBusyHours - 8
	return availableHours*60 >= requiredMinutes
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
