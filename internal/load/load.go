// Package load scores completed activities and derives the acute:chronic
// workload ratio used by the adaptation engine.
package load

import (
	"fmt"
	"math"
	"time"

	"github.com/claude/stridecoach/internal/models"
)

// Activity is a completed workout as reported by a watch or manual entry.
type Activity struct {
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"duration_minutes"`
	DistanceKm      float64   `json:"distance_km,omitempty"`
	AvgHR           int       `json:"avg_hr,omitempty"`
	MaxHR           int       `json:"max_hr,omitempty"`
	AveragePace     string    `json:"average_pace,omitempty"` // "M:SS" per km
}

const defaultMaxHR = 190

// Score estimates the training load of one activity: duration times a
// relative intensity factor. Heart rate drives the factor when present,
// otherwise pace; with neither the factor is neutral.
func Score(a Activity) float64 {
	factor := 1.0

	switch {
	case a.AvgHR > 0:
		maxHR := a.MaxHR
		if maxHR == 0 {
			maxHR = defaultMaxHR
		}
		intensity := float64(a.AvgHR) / float64(maxHR)
		switch {
		case intensity < 0.6:
			factor = 0.5
		case intensity < 0.75:
			factor = 1.0
		case intensity < 0.85:
			factor = 1.5
		default:
			factor = 2.0
		}

	case a.AveragePace != "":
		if sec := paceSeconds(a.AveragePace); sec > 0 {
			paceMinKm := float64(sec) / 60
			switch {
			case paceMinKm < 4.5:
				factor = 2.0
			case paceMinKm < 5.0:
				factor = 1.5
			case paceMinKm < 5.5:
				factor = 1.0
			default:
				factor = 0.5
			}
		}
	}

	return math.Round(float64(a.DurationMinutes)*factor*10) / 10
}

// FromSession converts a completed session's actuals into an Activity.
func FromSession(s *models.Session) Activity {
	duration := s.ActualDurationMinutes
	if duration == 0 {
		duration = s.DurationMinutes
	}
	return Activity{
		Date:            s.CompletedAt,
		DurationMinutes: duration,
		DistanceKm:      s.ActualDistanceKm,
		AvgHR:           s.AverageHR,
		MaxHR:           s.MaxHR,
		AveragePace:     s.AveragePace,
	}
}

// Status classifies an ACWR value.
type Status string

const (
	StatusUndertrained Status = "undertrained"
	StatusOptimal      Status = "optimal"
	StatusCaution      Status = "caution"
	StatusOverload     Status = "overload"
)

// Bounds are the ACWR classification cut points.
type Bounds struct {
	OptimalMin float64
	OptimalMax float64
	CautionMax float64
}

// DefaultBounds returns the standard 0.8 / 1.3 / 1.5 bands.
func DefaultBounds() Bounds {
	return Bounds{OptimalMin: 0.8, OptimalMax: 1.3, CautionMax: 1.5}
}

// Classify maps an ACWR value onto a status band.
func (b Bounds) Classify(acwr float64) Status {
	switch {
	case acwr < b.OptimalMin:
		return StatusUndertrained
	case acwr <= b.OptimalMax:
		return StatusOptimal
	case acwr <= b.CautionMax:
		return StatusCaution
	default:
		return StatusOverload
	}
}

// Summary is the derived workload state for one day.
type Summary struct {
	ACWR        float64 `json:"acwr"`
	AcuteLoad   float64 `json:"acute_load"`   // 7-day total
	ChronicLoad float64 `json:"chronic_load"` // 28-day weekly average
	Status      Status  `json:"status"`
}

// Summarize computes the acute (7 days) and chronic (28 days, averaged per
// week) loads ending on asOf, and the resulting ratio. With no chronic
// history the ratio is neutral.
func Summarize(activities []Activity, asOf time.Time, bounds Bounds) Summary {
	acuteFrom := asOf.AddDate(0, 0, -7)
	chronicFrom := asOf.AddDate(0, 0, -28)

	var acute, chronic28 float64
	for _, a := range activities {
		if a.Date.After(asOf) || !a.Date.After(chronicFrom) {
			continue
		}
		s := Score(a)
		chronic28 += s
		if a.Date.After(acuteFrom) {
			acute += s
		}
	}

	chronic := chronic28 / 4

	acwr := 1.0
	if chronic > 0 {
		acwr = math.Round(acute/chronic*100) / 100
	}

	return Summary{
		ACWR:        acwr,
		AcuteLoad:   math.Round(acute*10) / 10,
		ChronicLoad: math.Round(chronic*10) / 10,
		Status:      bounds.Classify(acwr),
	}
}

// Metrics converts a summary into the model aggregate consumed by the
// adaptation engine.
func (s Summary) Metrics(date time.Time) *models.TrainingLoad {
	return &models.TrainingLoad{
		Date:        date,
		AcuteLoad:   s.AcuteLoad,
		ChronicLoad: s.ChronicLoad,
		ACWR:        s.ACWR,
		Source:      "stridecoach",
	}
}

// ResidualPenalty lowers a recovery score for a same-day workout. The
// penalty scales with the workout's load and decays linearly over 48
// hours, never below 30% of its initial value.
func ResidualPenalty(baseScore, todayLoad, hoursSince float64) (adjusted, penalty float64) {
	var basePenalty float64
	switch {
	case todayLoad < 30:
		basePenalty = -5
	case todayLoad < 60:
		basePenalty = -10
	case todayLoad < 100:
		basePenalty = -15
	default:
		basePenalty = -20
	}

	timeFactor := 1.0 - hoursSince/48
	if timeFactor < 0.3 {
		timeFactor = 0.3
	}

	penalty = math.Round(basePenalty*timeFactor*10) / 10
	adjusted = baseScore + penalty
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 100 {
		adjusted = 100
	}
	return math.Round(adjusted*10) / 10, penalty
}

func paceSeconds(pace string) int {
	var min, sec int
	if _, err := fmt.Sscanf(pace, "%d:%d", &min, &sec); err != nil || sec > 59 {
		return 0
	}
	return min*60 + sec
}
