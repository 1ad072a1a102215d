// Package feedback turns athlete-reported activity tags into recovery
// score adjustments and rest warnings.
package feedback

import (
	"math"
	"time"
)

// Tag is a canned post-activity feedback item.
type Tag string

// Negative tags.
const (
	TagHeavyLegs Tag = "heavy_legs"
	TagIllness   Tag = "illness"
	TagFatigue   Tag = "fatigue"
	TagAches     Tag = "aches"
	TagBadDay    Tag = "bad_day"
	TagRain      Tag = "rain"
	TagHeat      Tag = "heat"
	TagCold      Tag = "cold"
)

// Positive tags.
const (
	TagGreatRun   Tag = "great_run"
	TagLightLegs  Tag = "light_legs"
	TagGoodForm   Tag = "good_form"
	TagStrongMind Tag = "strong_mind"
	TagEnjoyment  Tag = "enjoyment"
)

// tagImpacts maps every known tag to its recovery-score delta.
var tagImpacts = map[Tag]float64{
	TagHeavyLegs: -10,
	TagIllness:   -15,
	TagFatigue:   -12,
	TagAches:     -8,
	TagBadDay:    -5,
	TagRain:      -2,
	TagHeat:      -5,
	TagCold:      -3,

	TagGreatRun:   8,
	TagLightLegs:  10,
	TagGoodForm:   8,
	TagStrongMind: 6,
	TagEnjoyment:  5,
}

// warnings for tags that should change today's plan outright.
var tagWarnings = map[Tag]string{
	TagIllness:   "illness reported: full rest is the priority",
	TagAches:     "pain reported: avoid intense sessions",
	TagHeavyLegs: "muscular fatigue: a regenerative session is recommended",
}

// Feedback is one day's worth of reported tags, most recent first in any
// slice passed to this package.
type Feedback struct {
	ActivityDate time.Time `json:"activity_date"`
	ActivityID   string    `json:"activity_id,omitempty"`
	Positive     []Tag     `json:"positive,omitempty"`
	Negative     []Tag     `json:"negative,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// Impact is the aggregate effect of one or more feedbacks.
type Impact struct {
	Adjustment float64  `json:"score_adjustment"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Analyze scores a single feedback. Unknown tags are ignored.
func Analyze(f Feedback) Impact {
	var impact Impact
	for _, tag := range f.Positive {
		impact.Adjustment += tagImpacts[tag]
	}
	for _, tag := range f.Negative {
		impact.Adjustment += tagImpacts[tag]
		if w, ok := tagWarnings[tag]; ok {
			impact.Warnings = append(impact.Warnings, w)
		}
	}
	return impact
}

// RecentImpact aggregates the most recent feedbacks with a linear time
// decay: the newest counts in full, each older one loses 30%.
func RecentImpact(feedbacks []Feedback, lookback int) Impact {
	if lookback <= 0 {
		lookback = 2
	}
	if len(feedbacks) > lookback {
		feedbacks = feedbacks[:lookback]
	}

	var total Impact
	seen := map[string]bool{}
	for i, f := range feedbacks {
		r := Analyze(f)

		decay := 1.0 - float64(i)*0.3
		if decay < 0 {
			decay = 0
		}
		total.Adjustment += r.Adjustment * decay

		for _, w := range r.Warnings {
			if !seen[w] {
				seen[w] = true
				total.Warnings = append(total.Warnings, w)
			}
		}
	}
	total.Adjustment = math.Round(total.Adjustment*10) / 10
	return total
}

// ShouldForceRest reports whether the latest feedback mandates a rest day:
// illness, pain, or heavy legs combined with fatigue.
func ShouldForceRest(feedbacks []Feedback) bool {
	if len(feedbacks) == 0 {
		return false
	}
	last := feedbacks[0]

	var heavyLegs, fatigue bool
	for _, tag := range last.Negative {
		switch tag {
		case TagIllness, TagAches:
			return true
		case TagHeavyLegs:
			heavyLegs = true
		case TagFatigue:
			fatigue = true
		}
	}
	return heavyLegs && fatigue
}

// AdjustScore applies an impact to a recovery score, clamped to [0,100].
func AdjustScore(base float64, impact Impact) float64 {
	adjusted := base + impact.Adjustment
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 100 {
		adjusted = 100
	}
	return math.Round(adjusted*10) / 10
}
