package adapt

import (
	"fmt"
	"time"

	"github.com/claude/stridecoach/internal/models"
)

// Adapter wires the scorer, the factor analyzers, and the decision engine
// into the single adapt-session operation. It holds no per-call state:
// concurrent calls on independent inputs are safe.
type Adapter struct {
	scorer *Scorer
	engine *Engine
	policy Policy
}

// New creates an Adapter with the given policy and scorer settings.
func New(policy Policy, scorer *Scorer) *Adapter {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Adapter{
		scorer: scorer,
		engine: NewEngine(policy),
		policy: policy,
	}
}

// NewDefault creates an Adapter with default policy, weights and baselines.
func NewDefault() *Adapter {
	return New(DefaultPolicy(), NewScorer())
}

// AdaptSession evaluates today's signals against the planned session and
// returns a recommendation. recent holds sessions completed in the last
// days (used by the sequencing analyzer); upcoming is accepted for future
// schedule optimization and currently unused.
func (a *Adapter) AdaptSession(session *models.Session, metrics *models.DailyMetrics, recent, upcoming []models.Session) (*Recommendation, error) {
	return a.adaptAt(time.Now(), session, metrics, recent, upcoming)
}

func (a *Adapter) adaptAt(now time.Time, session *models.Session, metrics *models.DailyMetrics, recent, _ []models.Session) (*Recommendation, error) {
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("validating session: %w", err)
	}
	if err := metrics.Validate(); err != nil {
		return nil, fmt.Errorf("validating metrics: %w", err)
	}

	if !metrics.HasRecoveryScore {
		a.scorer.RecoveryScore(metrics)
	}
	recoveryScore := metrics.RecoveryScore

	recovery, recoveryEv := analyzeRecovery(recoveryScore, metrics)
	availability, availabilityEv := analyzeAvailability(session, metrics)
	load, loadEv := analyzeLoad(metrics, a.policy.ACWR)
	sequence, sequenceEv := analyzeSequence(session, recent, now)

	var evidence []string
	evidence = append(evidence, recoveryEv...)
	evidence = append(evidence, availabilityEv...)
	evidence = append(evidence, loadEv...)
	evidence = append(evidence, sequenceEv...)

	action, reason, modified := a.engine.Decide(session, recovery, load, sequence, availability)

	return &Recommendation{
		Action:     action,
		Reason:     reason,
		Evidence:   evidence,
		Modified:   modified,
		Confidence: Confidence(metrics),
	}, nil
}

// Confidence is a data-completeness heuristic in [0,1]: the fraction of the
// five input groups present in the aggregate. It is not a statistical
// confidence interval; below 0.6 callers should consider a manual override.
func Confidence(m *models.DailyMetrics) float64 {
	present := 0
	if m.Sleep != nil {
		present++
	}
	if m.HRV != nil {
		present++
	}
	if m.TrainingLoad != nil {
		present++
	}
	if len(m.AvailableTimeSlots) > 0 {
		present++
	}
	if m.Subjective != nil {
		present++
	}
	return float64(present) / 5
}

// QuickAdapt adapts a session from a bare recovery score and a has-time
// flag, synthesizing a minimal metrics aggregate. Useful for callers
// without wearable data.
func (a *Adapter) QuickAdapt(session *models.Session, recoveryScore float64, hasTime bool) (*Recommendation, error) {
	if recoveryScore < 0 || recoveryScore > 100 {
		return nil, fmt.Errorf("recovery score %.1f out of range [0,100]", recoveryScore)
	}

	metrics := &models.DailyMetrics{
		Date:             time.Now(),
		RecoveryScore:    recoveryScore,
		HasRecoveryScore: true,
		Readiness:        models.ReadinessForScore(recoveryScore),
	}
	if hasTime {
		metrics.AvailableTimeSlots = []string{"18:00-20:00"}
	} else {
		// A token sliver plus a fully booked day: the availability check
		// fails outright instead of falling back to the no-data neutral.
		metrics.AvailableTimeSlots = []string{"18:00-18:15"}
		metrics.CalendarBusyHours = 16
	}

	return a.AdaptSession(session, metrics, nil, nil)
}
