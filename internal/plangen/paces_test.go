package plangen

import "testing"

func TestPaceConversions(t *testing.T) {
	if got := PaceToSeconds("4:30"); got != 270 {
		t.Errorf("PaceToSeconds(4:30) = %d, want 270", got)
	}
	if got := SecondsToPace(270); got != "4:30" {
		t.Errorf("SecondsToPace(270) = %q, want 4:30", got)
	}
	if got := SecondsToPace(305); got != "5:05" {
		t.Errorf("SecondsToPace(305) = %q, want 5:05", got)
	}
	if got := PaceToSeconds("garbage"); got != 0 {
		t.Errorf("PaceToSeconds(garbage) = %d, want 0", got)
	}
}

func TestVMAToPace(t *testing.T) {
	// 17 km/h is 3600/17 = 211.8 sec/km.
	if got := VMAToPace(17); got != "3:32" {
		t.Errorf("VMAToPace(17) = %q, want 3:32", got)
	}
	if got := VMAToPace(12); got != "5:00" {
		t.Errorf("VMAToPace(12) = %q, want 5:00", got)
	}
}

// TestPacesFromVMAOrdering verifies the zone table is internally
// consistent: each faster zone has a smaller sec/km target.
func TestPacesFromVMAOrdering(t *testing.T) {
	// 10K race pace (93% VMA) sits strictly between threshold and interval.
	p := PacesFromVMA(17, 0, 0, 10)

	order := []struct {
		name string
		pace string
	}{
		{"recovery", p.Recovery.Target},
		{"easy", p.Easy.Target},
		{"endurance", p.Endurance.Target},
		{"tempo", p.Tempo.Target},
		{"threshold", p.Threshold.Target},
		{"race", p.Race.Target},
		{"interval", p.Interval.Target},
	}
	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		if PaceToSeconds(cur.pace) >= PaceToSeconds(prev.pace) {
			t.Errorf("%s (%s) should be faster than %s (%s)", cur.name, cur.pace, prev.name, prev.pace)
		}
	}
}

// TestPacesFromVMAGoalAdjustment verifies that a goal close to VMA slows
// the easy zones down relative to a conservative goal.
func TestPacesFromVMAGoalAdjustment(t *testing.T) {
	// 21.1km at 4:00/km is ~95% of a 16 km/h VMA: very ambitious.
	ambitious := PacesFromVMA(16, 0, 240, 21.1)
	// The same VMA with a 5:20/km goal is conservative.
	conservative := PacesFromVMA(16, 0, 320, 21.1)

	if PaceToSeconds(ambitious.Easy.Target) <= PaceToSeconds(conservative.Easy.Target) {
		t.Errorf("ambitious goal easy pace %s should be slower than conservative %s",
			ambitious.Easy.Target, conservative.Easy.Target)
	}
	// Hard zones are VMA-anchored and unaffected by the goal.
	if ambitious.Interval.Target != conservative.Interval.Target {
		t.Errorf("interval pace changed with goal: %s vs %s",
			ambitious.Interval.Target, conservative.Interval.Target)
	}
}

func TestPacesFromTarget(t *testing.T) {
	// 50-minute 10K is a 5:00/km goal pace.
	p := PacesFromTarget(50, 10)

	if p.Race.Target != "5:00" {
		t.Errorf("race target = %q, want 5:00", p.Race.Target)
	}
	if p.Easy.Target != "6:15" { // goal + 75s
		t.Errorf("easy target = %q, want 6:15", p.Easy.Target)
	}
	if p.Threshold.Target != "5:07" { // goal + 7s
		t.Errorf("threshold target = %q, want 5:07", p.Threshold.Target)
	}
	if p.Interval.Target != "4:52" { // goal - 8s for a 10K
		t.Errorf("interval target = %q, want 4:52", p.Interval.Target)
	}
}

func TestEstimateRaceTime(t *testing.T) {
	// 10K at 93% of a 16 km/h VMA: 10 / 14.88 h = 40:19.
	minutes, formatted := EstimateRaceTime(10, 16)
	if minutes != 40 {
		t.Errorf("minutes = %d, want 40", minutes)
	}
	if formatted != "40:19" {
		t.Errorf("formatted = %q, want 40:19", formatted)
	}

	// Half marathon crosses the hour and uses H:MM:SS.
	_, formatted = EstimateRaceTime(21.1, 16)
	if len(formatted) != 7 || formatted[1] != ':' {
		t.Errorf("formatted = %q, want H:MM:SS", formatted)
	}
}

func TestHeartRateZones(t *testing.T) {
	// Percent-of-max method.
	zones := HeartRateZones(200, 0)
	if len(zones) != 5 {
		t.Fatalf("zones = %d, want 5", len(zones))
	}
	if zones[0].MinBPM != 100 || zones[0].MaxBPM != 120 {
		t.Errorf("Z1 = %d-%d, want 100-120", zones[0].MinBPM, zones[0].MaxBPM)
	}
	if zones[4].MaxBPM != 200 {
		t.Errorf("Z5 max = %d, want max HR", zones[4].MaxBPM)
	}

	// Karvonen method with a known resting HR.
	zones = HeartRateZones(190, 50)
	if zones[1].MinBPM != 134 || zones[1].MaxBPM != 148 {
		t.Errorf("Karvonen Z2 = %d-%d, want 134-148", zones[1].MinBPM, zones[1].MaxBPM)
	}
	if zones[4].MaxBPM != 190 {
		t.Errorf("Karvonen Z5 max = %d, want max HR", zones[4].MaxBPM)
	}
}
