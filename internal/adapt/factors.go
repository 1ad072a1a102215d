package adapt

import (
	"fmt"
	"time"

	"github.com/claude/stridecoach/internal/models"
)

// availabilityMarginMinutes is the fixed buffer added on top of the session
// duration when checking calendar feasibility: warm-up, shower, travel.
const availabilityMarginMinutes = 30

// ACWRBounds define the optimal and caution bands for the acute:chronic
// workload ratio.
type ACWRBounds struct {
	OptimalMin float64 `yaml:"optimal_min" json:"optimal_min"`
	OptimalMax float64 `yaml:"optimal_max" json:"optimal_max"`
	CautionMax float64 `yaml:"caution_max" json:"caution_max"`
}

// DefaultACWRBounds returns the literature-standard 0.8 / 1.3 / 1.5 bands.
func DefaultACWRBounds() ACWRBounds {
	return ACWRBounds{OptimalMin: 0.8, OptimalMax: 1.3, CautionMax: 1.5}
}

// analyzeRecovery maps the recovery score to a [0,1] factor and reports the
// signals behind it.
func analyzeRecovery(recoveryScore float64, m *models.DailyMetrics) (float64, []string) {
	evidence := []string{
		fmt.Sprintf("recovery score %.0f/100 (%s)", recoveryScore, m.Readiness),
	}
	if m.Sleep != nil {
		evidence = append(evidence, fmt.Sprintf("sleep %.1fh (quality %s)", m.Sleep.TotalHours, m.Sleep.Quality))
	}
	if m.HRV != nil {
		evidence = append(evidence, fmt.Sprintf("HRV %.0fms", m.HRV.Ms))
	}
	if m.TrainingLoad != nil {
		evidence = append(evidence, fmt.Sprintf("ACWR %.2f (%s)", m.TrainingLoad.CalculateACWR(), acwrStatus(m.TrainingLoad.CalculateACWR(), DefaultACWRBounds())))
	}
	return recoveryScore / 100, evidence
}

// analyzeAvailability checks whether the day leaves room for the session
// plus margin. No availability data at all yields the neutral 0.5.
func analyzeAvailability(session *models.Session, m *models.DailyMetrics) (float64, []string) {
	if len(m.AvailableTimeSlots) == 0 {
		return 0.5, []string{"calendar: no availability data"}
	}

	if m.HasAvailableTime(session.DurationMinutes + availabilityMarginMinutes) {
		return 1.0, []string{fmt.Sprintf("calendar: %d free slots", len(m.AvailableTimeSlots))}
	}
	return 0.3, []string{fmt.Sprintf("calendar: limited availability (%dh busy)", m.CalendarBusyHours)}
}

// analyzeLoad converts the ACWR into a feasibility factor. Under-training
// is tolerable (0.9); overload penalizes progressively.
func analyzeLoad(m *models.DailyMetrics, bounds ACWRBounds) (float64, []string) {
	if m.TrainingLoad == nil {
		return 0.7, nil
	}
	acwr := m.TrainingLoad.CalculateACWR()

	switch {
	case acwr >= bounds.OptimalMin && acwr <= bounds.OptimalMax:
		return 1.0, nil
	case acwr < bounds.OptimalMin:
		return 0.9, []string{fmt.Sprintf("load: ACWR %.2f below optimal band, room to absorb work", acwr)}
	case acwr <= bounds.CautionMax:
		return 0.6, []string{fmt.Sprintf("load: ACWR %.2f slightly above optimal band", acwr)}
	default:
		return 0.3, []string{fmt.Sprintf("load: ACWR %.2f well above optimal band, overload risk", acwr)}
	}
}

// analyzeSequence penalizes intensity clustering: hard sessions completed in
// the 48 hours before now, combined with a hard candidate.
func analyzeSequence(session *models.Session, recent []models.Session, now time.Time) (float64, []string) {
	if len(recent) == 0 {
		return 1.0, nil
	}

	var intense int
	cutoff := now.Add(-48 * time.Hour)
	for i := range recent {
		s := &recent[i]
		if s.CompletedAt.IsZero() || s.CompletedAt.Before(cutoff) {
			continue
		}
		if s.Intensity.IsHard() {
			intense++
		}
	}

	switch {
	case intense >= 2 && session.Intensity.IsHard():
		return 0.4, []string{fmt.Sprintf("sequencing: %d intense sessions in the last 48h", intense)}
	case intense == 1 && session.Intensity == models.IntensityVeryHard:
		return 0.7, []string{"sequencing: 1 intense session in the last 48h"}
	default:
		return 1.0, nil
	}
}

// acwrStatus labels an ACWR value for evidence strings.
func acwrStatus(acwr float64, bounds ACWRBounds) string {
	switch {
	case acwr < bounds.OptimalMin:
		return "undertrained"
	case acwr <= bounds.OptimalMax:
		return "optimal"
	case acwr <= bounds.CautionMax:
		return "mild fatigue"
	default:
		return "overload"
	}
}
