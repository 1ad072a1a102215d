package models

import (
	"time"
)

// TrainingPhase is a macro-cycle phase within a plan.
type TrainingPhase string

const (
	PhaseBase  TrainingPhase = "base"
	PhaseBuild TrainingPhase = "build"
	PhaseTaper TrainingPhase = "taper"
)

// WeekType distinguishes normal weeks from absorb/peak/race weeks.
type WeekType string

const (
	WeekNormal   WeekType = "normal"
	WeekRecovery WeekType = "recovery"
	WeekRace     WeekType = "race"
)

// Week is one training week inside a plan.
type Week struct {
	WeekNumber int           `json:"week_number"`
	StartDate  time.Time     `json:"start_date"` // Monday
	EndDate    time.Time     `json:"end_date"`
	Phase      TrainingPhase `json:"phase"`
	Type       WeekType      `json:"week_type"`
	Focus      string        `json:"focus,omitempty"`
	Sessions   []Session     `json:"sessions"`
}

// TotalVolume sums the planned distance for the week.
func (w *Week) TotalVolume() float64 {
	var total float64
	for i := range w.Sessions {
		total += w.Sessions[i].TotalDistance()
	}
	return round2(total)
}

// TotalDuration sums the planned minutes for the week.
func (w *Week) TotalDuration() int {
	var total int
	for i := range w.Sessions {
		total += w.Sessions[i].DurationMinutes
	}
	return total
}

// SessionByDay returns the session scheduled on the given weekday
// (1 = Monday), or nil.
func (w *Week) SessionByDay(day int) *Session {
	for i := range w.Sessions {
		if w.Sessions[i].DayOfWeek == day {
			return &w.Sessions[i]
		}
	}
	return nil
}

// Plan is a complete multi-week training plan for one race goal.
type Plan struct {
	ID          string `json:"id"`
	AthleteID   string `json:"athlete_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	GoalDistance    string `json:"goal_distance"` // "5K", "10K", "half_marathon"
	GoalTime        string `json:"goal_time"`     // "1:45:00"
	TargetPacePerKm string `json:"target_pace_per_km"`

	StartDate     time.Time `json:"start_date"`
	RaceDate      time.Time `json:"race_date"`
	DurationWeeks int       `json:"duration_weeks"`

	SessionsPerWeek int   `json:"sessions_per_week"`
	PreferredDays   []int `json:"preferred_training_days"` // 1 = Monday

	Weeks []Week `json:"weeks"`

	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// Week returns the week with the given number, or nil.
func (p *Plan) Week(n int) *Week {
	for i := range p.Weeks {
		if p.Weeks[i].WeekNumber == n {
			return &p.Weeks[i]
		}
	}
	return nil
}

// CurrentWeek returns the week containing the given day, or nil when the
// day falls outside the plan.
func (p *Plan) CurrentWeek(today time.Time) *Week {
	for i := range p.Weeks {
		w := &p.Weeks[i]
		if !today.Before(w.StartDate) && !today.After(w.EndDate) {
			return w
		}
	}
	return nil
}

// NextSession returns the earliest upcoming planned or adapted session on
// or after the given day, or nil.
func (p *Plan) NextSession(today time.Time) *Session {
	var next *Session
	for i := range p.Weeks {
		for j := range p.Weeks[i].Sessions {
			s := &p.Weeks[i].Sessions[j]
			if s.ScheduledDate.IsZero() || s.ScheduledDate.Before(today) {
				continue
			}
			if s.Status != StatusPlanned && s.Status != StatusAdapted {
				continue
			}
			if next == nil || s.ScheduledDate.Before(next.ScheduledDate) {
				next = s
			}
		}
	}
	return next
}

// TotalVolume sums planned kilometers across all weeks.
func (p *Plan) TotalVolume() float64 {
	var total float64
	for i := range p.Weeks {
		total += p.Weeks[i].TotalVolume()
	}
	return round2(total)
}

// CompletionRate is the completed fraction of all planned sessions.
func (p *Plan) CompletionRate() float64 {
	var total, completed int
	for i := range p.Weeks {
		for j := range p.Weeks[i].Sessions {
			total++
			if p.Weeks[i].Sessions[j].Status == StatusCompleted {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

// Validate checks the plan's structure and every session in it.
func (p *Plan) Validate() error {
	for i := range p.Weeks {
		for j := range p.Weeks[i].Sessions {
			if err := p.Weeks[i].Sessions[j].Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
