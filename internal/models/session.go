package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SessionType classifies a planned session.
type SessionType string

const (
	SessionEndurance SessionType = "endurance"
	SessionTempo     SessionType = "tempo"
	SessionThreshold SessionType = "threshold"
	SessionIntervals SessionType = "intervals"
	SessionLongRun   SessionType = "long_run"
	SessionRecovery  SessionType = "recovery"
	SessionRace      SessionType = "race"
	SessionRest      SessionType = "rest"
	SessionFartlek   SessionType = "fartlek"
)

// Intensity is the effort tier of a session.
type Intensity string

const (
	IntensityVeryEasy Intensity = "very_easy"
	IntensityEasy     Intensity = "easy"
	IntensityModerate Intensity = "moderate"
	IntensityHard     Intensity = "hard"
	IntensityVeryHard Intensity = "very_hard"
)

// IsHard reports whether the intensity is in the hard or very_hard tier.
func (i Intensity) IsHard() bool {
	return i == IntensityHard || i == IntensityVeryHard
}

// SessionStatus tracks a session's lifecycle. Transitions are monotonic:
// a session leaves planned exactly once and never reverts.
type SessionStatus string

const (
	StatusPlanned   SessionStatus = "planned"
	StatusAdapted   SessionStatus = "adapted"
	StatusCompleted SessionStatus = "completed"
	StatusSkipped   SessionStatus = "skipped"
	StatusPostponed SessionStatus = "postponed"
)

// PaceZone is one structural clause of a session: a block run at a target
// pace, optionally repeated with recovery between reps.
type PaceZone struct {
	Description     string   `json:"description" yaml:"description"`
	DurationMinutes int      `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty"`
	DistanceKm      float64  `json:"distance_km,omitempty" yaml:"distance_km,omitempty"`
	PaceMinPerKm    string   `json:"pace_min_per_km" yaml:"pace_min_per_km"`
	PaceMaxPerKm    string   `json:"pace_max_per_km,omitempty" yaml:"pace_max_per_km,omitempty"`
	HRZone          string   `json:"hr_zone,omitempty" yaml:"hr_zone,omitempty"`
	Repetitions     int      `json:"repetitions" yaml:"repetitions"`
	RecoveryMinutes float64  `json:"recovery_minutes,omitempty" yaml:"recovery_minutes,omitempty"`
}

// ValidatePace checks the "M:SS" pace format: exactly two integer
// components separated by a colon, seconds below 60.
func ValidatePace(pace string) error {
	parts := strings.Split(pace, ":")
	if len(parts) != 2 {
		return fmt.Errorf("pace %q: want M:SS format", pace)
	}
	min, err := strconv.Atoi(parts[0])
	if err != nil || min < 0 {
		return fmt.Errorf("pace %q: minutes component is not a valid integer", pace)
	}
	sec, err := strconv.Atoi(parts[1])
	if err != nil || sec < 0 || sec > 59 {
		return fmt.Errorf("pace %q: seconds component is not a valid integer in [0,59]", pace)
	}
	return nil
}

// Validate checks pace formats and the repetition count.
func (z *PaceZone) Validate() error {
	if err := ValidatePace(z.PaceMinPerKm); err != nil {
		return err
	}
	if z.PaceMaxPerKm != "" {
		if err := ValidatePace(z.PaceMaxPerKm); err != nil {
			return err
		}
	}
	if z.Repetitions < 1 {
		return fmt.Errorf("zone %q: repetitions = %d, want >= 1", z.Description, z.Repetitions)
	}
	return nil
}

// Session is the plan unit the adaptation engine operates on. It is treated
// as immutable once built; adaptation produces a new Session value.
type Session struct {
	ID            string      `json:"id" yaml:"id"`
	WeekNumber    int         `json:"week_number" yaml:"week_number"`
	DayOfWeek     int         `json:"day_of_week" yaml:"day_of_week"` // 1 = Monday
	SessionNumber int         `json:"session_number" yaml:"session_number"`

	Type        SessionType `json:"session_type" yaml:"session_type"`
	Intensity   Intensity   `json:"intensity" yaml:"intensity"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`

	DurationMinutes int      `json:"duration_minutes" yaml:"duration_minutes"`
	DistanceKm      float64  `json:"distance_km,omitempty" yaml:"distance_km,omitempty"`

	Structure []PaceZone `json:"structure,omitempty" yaml:"structure,omitempty"`

	ScheduledDate time.Time `json:"scheduled_date,omitempty" yaml:"scheduled_date,omitempty"`
	ScheduledTime string    `json:"scheduled_time,omitempty" yaml:"scheduled_time,omitempty"` // HH:MM

	Status           SessionStatus `json:"status" yaml:"status"`
	AdaptationReason string        `json:"adaptation_reason,omitempty" yaml:"adaptation_reason,omitempty"`
	OriginalID       string        `json:"original_session_id,omitempty" yaml:"original_session_id,omitempty"`

	IsKeySession   bool `json:"is_key_session" yaml:"is_key_session"`
	CanBePostponed bool `json:"can_be_postponed" yaml:"can_be_postponed"`
	CanBeReplaced  bool `json:"can_be_replaced" yaml:"can_be_replaced"`

	CompletedAt           time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	ActualDurationMinutes int       `json:"actual_duration_minutes,omitempty" yaml:"actual_duration_minutes,omitempty"`
	ActualDistanceKm      float64   `json:"actual_distance_km,omitempty" yaml:"actual_distance_km,omitempty"`
	AveragePace           string    `json:"average_pace,omitempty" yaml:"average_pace,omitempty"`
	AverageHR             int       `json:"average_hr,omitempty" yaml:"average_hr,omitempty"`
	MaxHR                 int       `json:"max_hr,omitempty" yaml:"max_hr,omitempty"`
	RPE                   int       `json:"rpe,omitempty" yaml:"rpe,omitempty"`
}

// Validate fails fast on out-of-range fields so the decision engine can
// assume pre-validated input.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session: id is required")
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("session %s: duration_minutes = %d, want > 0", s.ID, s.DurationMinutes)
	}
	if s.DistanceKm < 0 {
		return fmt.Errorf("session %s: distance_km = %.2f, want >= 0", s.ID, s.DistanceKm)
	}
	if s.DayOfWeek != 0 && (s.DayOfWeek < 1 || s.DayOfWeek > 7) {
		return fmt.Errorf("session %s: day_of_week = %d, want 1..7", s.ID, s.DayOfWeek)
	}
	if s.RPE != 0 && (s.RPE < 1 || s.RPE > 10) {
		return fmt.Errorf("session %s: rpe = %d, want 1..10", s.ID, s.RPE)
	}
	for i := range s.Structure {
		if err := s.Structure[i].Validate(); err != nil {
			return fmt.Errorf("session %s: %w", s.ID, err)
		}
	}
	return nil
}

// TotalDistance returns the declared distance, or sums the structure
// (distance per zone times repetitions) when no total is set.
func (s *Session) TotalDistance() float64 {
	if s.DistanceKm > 0 {
		return s.DistanceKm
	}
	var total float64
	for _, z := range s.Structure {
		total += z.DistanceKm * float64(z.Repetitions)
	}
	return round2(total)
}

// LoadScore estimates the session's training load on a 0-100 scale from
// duration and intensity, with a small bump for key sessions.
func (s *Session) LoadScore() int {
	duration := float64(s.DurationMinutes) * 0.5
	if duration > 60 {
		duration = 60
	}

	multiplier := 1.0
	switch s.Intensity {
	case IntensityVeryEasy:
		multiplier = 0.5
	case IntensityEasy:
		multiplier = 0.7
	case IntensityModerate:
		multiplier = 1.0
	case IntensityHard:
		multiplier = 1.3
	case IntensityVeryHard:
		multiplier = 1.5
	}

	score := duration * multiplier
	if s.IsKeySession {
		score *= 1.1
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// Summary renders the structure as a compact one-line workout description.
func (s *Session) Summary() string {
	var parts []string
	for _, z := range s.Structure {
		rep := ""
		if z.Repetitions > 1 {
			rep = fmt.Sprintf("%dx ", z.Repetitions)
		}
		switch {
		case z.DistanceKm > 0:
			parts = append(parts, fmt.Sprintf("%s%.1fkm @ %s/km", rep, z.DistanceKm, z.PaceMinPerKm))
		case z.DurationMinutes > 0:
			parts = append(parts, fmt.Sprintf("%s%dmin @ %s/km", rep, z.DurationMinutes, z.PaceMinPerKm))
		}
		if z.RecoveryMinutes > 0 && z.Repetitions > 1 {
			parts = append(parts, fmt.Sprintf("(recovery %.1gmin)", z.RecoveryMinutes))
		}
	}
	return strings.Join(parts, " + ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
