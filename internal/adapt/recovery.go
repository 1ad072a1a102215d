// Package adapt implements the session-adaptation decision engine: it turns
// a day's recovery signals into a single recovery score and a discrete
// adaptation action, producing a lightened or replaced session when needed.
package adapt

import (
	"math"

	"github.com/claude/stridecoach/internal/models"
)

// Weights control how much each signal contributes to the recovery score.
// Missing components are excluded and the remaining weights re-normalized.
type Weights struct {
	Sleep      float64 `yaml:"sleep" json:"sleep"`
	HRV        float64 `yaml:"hrv" json:"hrv"`
	Load       float64 `yaml:"load" json:"load"`
	RHR        float64 `yaml:"rhr" json:"rhr"`
	Subjective float64 `yaml:"subjective" json:"subjective"`
}

// DefaultWeights is the recovery-dominant default: sleep and HRV together
// drive 60% of the score.
func DefaultWeights() Weights {
	return Weights{Sleep: 0.35, HRV: 0.25, Load: 0.20, RHR: 0.10, Subjective: 0.10}
}

// Scorer computes the 0-100 recovery score from a day's metrics.
type Scorer struct {
	Weights        Weights
	BaselineHRVMs  float64
	BaselineRHRBPM int
}

// NewScorer returns a Scorer with default weights and baselines.
func NewScorer() *Scorer {
	return &Scorer{
		Weights:        DefaultWeights(),
		BaselineHRVMs:  50,
		BaselineRHRBPM: 50,
	}
}

// RecoveryScore computes the weighted recovery score in [0,100], caches it
// on the aggregate together with the readiness tier, and returns it. With no
// components present the score defaults to the neutral 50. The computation
// is idempotent: the same inputs always produce the same score.
func (sc *Scorer) RecoveryScore(m *models.DailyMetrics) float64 {
	type component struct {
		weight float64
		score  float64
	}
	var components []component

	if m.Sleep != nil {
		components = append(components, component{sc.Weights.Sleep, m.Sleep.NormalizedScore()})
	}
	if m.HRV != nil {
		components = append(components, component{sc.Weights.HRV, m.HRV.NormalizedScore(sc.BaselineHRVMs)})
	}
	if m.TrainingLoad != nil {
		components = append(components, component{sc.Weights.Load, m.TrainingLoad.NormalizedScore()})
	}
	if m.RestingHR != nil {
		components = append(components, component{sc.Weights.RHR, m.RestingHR.NormalizedScore(sc.BaselineRHRBPM)})
	}
	if m.Subjective != nil {
		components = append(components, component{sc.Weights.Subjective, m.Subjective.NormalizedScore()})
	}

	var totalWeight, weighted float64
	for _, c := range components {
		totalWeight += c.weight
		weighted += c.weight * c.score
	}

	score := 50.0
	if totalWeight > 0 {
		score = math.Round(weighted/totalWeight*1000) / 10
	}

	m.RecoveryScore = score
	m.HasRecoveryScore = true
	m.Readiness = models.ReadinessForScore(score)
	return score
}
