package adapt

import (
	"math"

	"github.com/claude/stridecoach/internal/models"
)

// Action is the adaptation decision for a session.
type Action string

const (
	ActionMaintain Action = "maintain"
	ActionMonitor  Action = "monitor"
	ActionReduce   Action = "reduce"
	ActionReplace  Action = "replace"
	ActionPostpone Action = "postpone"
	ActionCancel   Action = "cancel"
)

// Recommendation is the engine's output for one session adaptation call.
type Recommendation struct {
	Action     Action          `json:"action"`
	Reason     string          `json:"reason"`
	Evidence   []string        `json:"evidence"`
	Modified   *models.Session `json:"modified_session,omitempty"`
	Confidence float64         `json:"confidence"`
}

// Thresholds are the composite-score cut points for the decision ladder,
// on the 0-100 scale. A composite exactly at a threshold maps to the
// higher tier.
type Thresholds struct {
	Excellent float64 `yaml:"excellent" json:"excellent"`
	Good      float64 `yaml:"good" json:"good"`
	Moderate  float64 `yaml:"moderate" json:"moderate"`
	Poor      float64 `yaml:"poor" json:"poor"`
}

// DefaultThresholds returns the tuned default ladder.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 85, Good: 70, Moderate: 55, Poor: 40}
}

// LowScoreFallback selects what happens at very low composite scores when
// postponement is not allowed.
type LowScoreFallback string

const (
	// FallbackCancel recommends full rest with no modified session.
	FallbackCancel LowScoreFallback = "cancel"
	// FallbackReplace recommends swapping in an easy recovery session
	// instead of dropping the day entirely.
	FallbackReplace LowScoreFallback = "replace"
)

// Policy bundles every tunable knob of the decision engine so behavior can
// be configured per athlete and tested deterministically.
type Policy struct {
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
	ACWR       ACWRBounds `yaml:"acwr" json:"acwr"`

	// KeySessionOffset relaxes every threshold for key sessions. Negative
	// values give the athlete more benefit of the doubt.
	KeySessionOffset float64 `yaml:"key_session_offset" json:"key_session_offset"`

	// Fallback applies below the poor threshold when the session cannot
	// be postponed.
	Fallback LowScoreFallback `yaml:"low_score_fallback" json:"low_score_fallback"`
}

// DefaultPolicy returns the default decision policy.
func DefaultPolicy() Policy {
	return Policy{
		Thresholds:       DefaultThresholds(),
		ACWR:             DefaultACWRBounds(),
		KeySessionOffset: -5,
		Fallback:         FallbackCancel,
	}
}

// Factor weights for the composite score. Physiological readiness dominates;
// calendar feasibility only tips close calls.
const (
	recoveryWeight     = 0.40
	loadWeight         = 0.25
	sequenceWeight     = 0.20
	availabilityWeight = 0.15
)

// Engine applies the decision ladder to the four analyzed factors.
type Engine struct {
	policy Policy
}

// NewEngine creates an Engine with the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Composite collapses the four [0,1] factors into the 0-100 decision score.
// The result is rounded to 2 decimals so values landing exactly on a
// threshold compare deterministically.
func Composite(recovery, load, sequence, availability float64) float64 {
	score := (recovery*recoveryWeight +
		load*loadWeight +
		sequence*sequenceWeight +
		availability*availabilityWeight) * 100
	return math.Round(score*100) / 100
}

// Decide selects one of the six actions from the composite score and, for
// REDUCE and REPLACE, builds the mutated session. The call is stateless:
// the decision is a pure function of the session and the four factors.
func (e *Engine) Decide(session *models.Session, recovery, load, sequence, availability float64) (Action, string, *models.Session) {
	composite := Composite(recovery, load, sequence, availability)

	var offset float64
	if session.IsKeySession {
		offset = e.policy.KeySessionOffset
	}
	t := e.policy.Thresholds

	switch {
	case composite >= t.Excellent+offset:
		return ActionMaintain, "conditions are optimal for the planned session", nil

	case composite >= t.Good+offset:
		return ActionMonitor, "conditions are good; watch for fatigue signs during the session", nil

	case composite >= t.Moderate+offset:
		modified := Lighten(session, 0.75)
		return ActionReduce, "moderate recovery: session volume reduced by 25%", modified

	case composite >= t.Poor+offset:
		if session.Intensity.IsHard() {
			modified := ReplaceWithEasy(session)
			return ActionReplace, "low recovery: intense session replaced with easy running", modified
		}
		modified := Lighten(session, 0.6)
		return ActionReduce, "low recovery: session volume reduced by 40%", modified

	default:
		if availability < 0.4 && session.CanBePostponed {
			return ActionPostpone, "calendar conflict: move the session to another day", nil
		}
		if e.policy.Fallback == FallbackReplace && session.CanBeReplaced {
			modified := ReplaceWithEasy(session)
			return ActionReplace, "insufficient recovery: only very easy running advised", modified
		}
		return ActionCancel, "insufficient recovery: full rest recommended", nil
	}
}
