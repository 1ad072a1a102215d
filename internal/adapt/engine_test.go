package adapt

import (
	"math"
	"testing"

	"github.com/claude/stridecoach/internal/models"
)

// TestComposite verifies the factor weighting: recovery dominates, calendar
// feasibility contributes least.
func TestComposite(t *testing.T) {
	if got := Composite(1, 1, 1, 1); math.Abs(got-100) > 1e-9 {
		t.Errorf("Composite(all 1.0) = %.2f, want 100", got)
	}
	if got := Composite(0, 0, 0, 0); got != 0 {
		t.Errorf("Composite(all 0) = %.2f, want 0", got)
	}
	// Only recovery at 1.0 contributes its 40-point share.
	if got := Composite(1, 0, 0, 0); math.Abs(got-40) > 1e-9 {
		t.Errorf("Composite(recovery only) = %.2f, want 40", got)
	}
	if got := Composite(0, 0, 0, 1); math.Abs(got-15) > 1e-9 {
		t.Errorf("Composite(availability only) = %.2f, want 15", got)
	}
}

// TestDecideThresholdLadder verifies the action selected in each composite
// band, with boundary values mapping to the higher tier.
func TestDecideThresholdLadder(t *testing.T) {
	engine := NewEngine(DefaultPolicy())

	tests := []struct {
		name      string
		factor    float64 // all four factors equal, so composite = factor*100
		intensity models.Intensity
		want      Action
	}{
		{"excellent band", 0.90, models.IntensityModerate, ActionMaintain},
		{"exactly at excellent", 0.85, models.IntensityModerate, ActionMaintain},
		{"good band", 0.75, models.IntensityModerate, ActionMonitor},
		{"exactly at good", 0.70, models.IntensityModerate, ActionMonitor},
		{"moderate band", 0.60, models.IntensityModerate, ActionReduce},
		{"exactly at moderate", 0.55, models.IntensityModerate, ActionReduce},
		{"poor band easy session", 0.45, models.IntensityModerate, ActionReduce},
		{"poor band hard session", 0.45, models.IntensityHard, ActionReplace},
		{"poor band very hard session", 0.45, models.IntensityVeryHard, ActionReplace},
		{"exactly at poor hard session", 0.40, models.IntensityHard, ActionReplace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := plannedSession(tt.intensity)
			action, _, _ := engine.Decide(session, tt.factor, tt.factor, tt.factor, tt.factor)
			if action != tt.want {
				t.Errorf("action = %s, want %s", action, tt.want)
			}
		})
	}
}

// TestDecideVeryPoorBand verifies the postpone/cancel branch below the poor
// threshold, including the configurable replace fallback.
func TestDecideVeryPoorBand(t *testing.T) {
	// Factors engineered so the composite lands below 40 with a failing
	// availability check: 100*(0.4*0.1 + 0.25*0.3 + 0.2*1.0 + 0.15*0.3) = 36.
	const recovery, load, sequence, availability = 0.1, 0.3, 1.0, 0.3

	t.Run("postponable session is postponed", func(t *testing.T) {
		engine := NewEngine(DefaultPolicy())
		session := plannedSession(models.IntensityModerate)
		session.CanBePostponed = true

		action, _, modified := engine.Decide(session, recovery, load, sequence, availability)
		if action != ActionPostpone {
			t.Errorf("action = %s, want postpone", action)
		}
		if modified != nil {
			t.Error("postpone must not produce a modified session")
		}
	})

	t.Run("non-postponable session is cancelled", func(t *testing.T) {
		engine := NewEngine(DefaultPolicy())
		session := plannedSession(models.IntensityModerate)
		session.CanBePostponed = false

		action, _, modified := engine.Decide(session, recovery, load, sequence, availability)
		if action != ActionCancel {
			t.Errorf("action = %s, want cancel", action)
		}
		if modified != nil {
			t.Error("cancel must not produce a modified session")
		}
	})

	t.Run("replace fallback swaps in recovery run", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.Fallback = FallbackReplace
		engine := NewEngine(policy)
		session := plannedSession(models.IntensityModerate)
		session.CanBePostponed = false

		action, _, modified := engine.Decide(session, recovery, load, sequence, availability)
		if action != ActionReplace {
			t.Errorf("action = %s, want replace", action)
		}
		if modified == nil || modified.Type != models.SessionRecovery {
			t.Errorf("modified = %+v, want recovery session", modified)
		}
	})

	t.Run("good availability at very low composite still cancels", func(t *testing.T) {
		// Availability above the 0.4 cutoff: postponing will not help,
		// the athlete simply should not train.
		engine := NewEngine(DefaultPolicy())
		session := plannedSession(models.IntensityModerate)

		action, _, _ := engine.Decide(session, 0.0, 0.3, 0.5, 1.0)
		if action != ActionCancel {
			t.Errorf("action = %s, want cancel", action)
		}
	})
}

// TestKeySessionLeniency verifies that the -5 offset relaxes every
// threshold: at the same composite a key session never receives a harsher
// action than a non-key session.
func TestKeySessionLeniency(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	rank := map[Action]int{
		ActionMaintain: 0,
		ActionMonitor:  1,
		ActionReduce:   2,
		ActionReplace:  3,
		ActionPostpone: 4,
		ActionCancel:   5,
	}

	for factor := 0.0; factor <= 1.0; factor += 0.01 {
		regular := plannedSession(models.IntensityHard)
		key := plannedSession(models.IntensityHard)
		key.IsKeySession = true

		regularAction, _, _ := engine.Decide(regular, factor, factor, factor, factor)
		keyAction, _, _ := engine.Decide(key, factor, factor, factor, factor)

		if rank[keyAction] > rank[regularAction] {
			t.Fatalf("composite %.0f: key session got %s, harsher than non-key %s",
				factor*100, keyAction, regularAction)
		}
	}
}

// TestKeySessionOffsetAtBoundary verifies that a composite of 81 keeps a
// key session at MAINTAIN (threshold 85-5=80) while a regular session
// drops to MONITOR.
func TestKeySessionOffsetAtBoundary(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	const factor = 0.81

	regular := plannedSession(models.IntensityModerate)
	action, _, _ := engine.Decide(regular, factor, factor, factor, factor)
	if action != ActionMonitor {
		t.Errorf("regular session action = %s, want monitor", action)
	}

	key := plannedSession(models.IntensityModerate)
	key.IsKeySession = true
	action, _, _ = engine.Decide(key, factor, factor, factor, factor)
	if action != ActionMaintain {
		t.Errorf("key session action = %s, want maintain", action)
	}
}

// TestDecideReduceScaling verifies that the moderate band produces a 25%
// reduction and the poor band a 40% reduction for non-intense sessions.
func TestDecideReduceScaling(t *testing.T) {
	engine := NewEngine(DefaultPolicy())

	t.Run("moderate band keeps 75%", func(t *testing.T) {
		session := plannedSession(models.IntensityModerate)
		_, _, modified := engine.Decide(session, 0.60, 0.60, 0.60, 0.60)
		if modified == nil {
			t.Fatal("expected modified session")
		}
		want := int(math.Round(float64(session.DurationMinutes) * 0.75))
		if modified.DurationMinutes != want {
			t.Errorf("duration = %d, want %d", modified.DurationMinutes, want)
		}
		if modified.Status != models.StatusAdapted {
			t.Errorf("status = %s, want adapted", modified.Status)
		}
	})

	t.Run("poor band keeps 60%", func(t *testing.T) {
		session := plannedSession(models.IntensityEasy)
		_, _, modified := engine.Decide(session, 0.45, 0.45, 0.45, 0.45)
		if modified == nil {
			t.Fatal("expected modified session")
		}
		want := int(math.Round(float64(session.DurationMinutes) * 0.6))
		if modified.DurationMinutes != want {
			t.Errorf("duration = %d, want %d", modified.DurationMinutes, want)
		}
	})
}
