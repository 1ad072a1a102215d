// Package plangen builds deterministic multi-week training plans from a
// race goal and an athlete's pace profile.
package plangen

import (
	"fmt"
	"math"
)

// PaceRange is a training zone expressed as min/max/target paces per km.
type PaceRange struct {
	Min    string `json:"min"`
	Max    string `json:"max"`
	Target string `json:"target"`
}

// TrainingPaces holds the derived pace for every training zone.
type TrainingPaces struct {
	Recovery  PaceRange `json:"recovery"`
	Easy      PaceRange `json:"easy"`
	Endurance PaceRange `json:"endurance"`
	Tempo     PaceRange `json:"tempo"`
	Threshold PaceRange `json:"threshold"`
	Race      PaceRange `json:"race"`
	Interval  PaceRange `json:"interval"`
}

// VMAToPace converts a maximal aerobic speed in km/h to a pace string.
func VMAToPace(vmaKmh float64) string {
	if vmaKmh <= 0 {
		return "0:00"
	}
	return SecondsToPace(int(math.Round(3600 / vmaKmh)))
}

// PaceToSeconds parses "M:SS" into seconds per km. Invalid input returns 0.
func PaceToSeconds(pace string) int {
	var min, sec int
	if _, err := fmt.Sscanf(pace, "%d:%d", &min, &sec); err != nil {
		return 0
	}
	return min*60 + sec
}

// SecondsToPace formats seconds per km as "M:SS".
func SecondsToPace(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// addSeconds shifts a pace expressed in sec/km and formats it.
func addSeconds(paceSec float64, delta int) string {
	return SecondsToPace(int(math.Round(paceSec)) + delta)
}

func pctOfVMA(vmaKmh, fraction float64) string {
	return VMAToPace(vmaKmh * fraction)
}

// PacesFromVMA derives the full zone table from a maximal aerobic speed.
// When the race goal is known the easy-zone fraction adapts to how
// ambitious the goal is relative to the VMA: a goal close to VMA means the
// athlete needs slower easy running to absorb the intensity. A very low
// resting HR shifts the easy zones down another 3%.
func PacesFromVMA(vmaKmh float64, restingHR int, targetPaceSecPerKm float64, raceKm float64) TrainingPaces {
	easyBase := 0.69
	recoveryBase := 0.65

	if targetPaceSecPerKm > 0 && raceKm > 0 {
		targetSpeedKmh := 3600 / targetPaceSecPerKm
		racePct := targetSpeedKmh / vmaKmh * 100
		switch {
		case racePct >= 95:
			easyBase, recoveryBase = 0.58, 0.53
		case racePct >= 90:
			easyBase, recoveryBase = 0.60, 0.55
		case racePct >= 85:
			easyBase, recoveryBase = 0.63, 0.58
		default:
			easyBase, recoveryBase = 0.66, 0.60
		}
		if restingHR > 0 && restingHR < 48 {
			easyBase -= 0.03
			recoveryBase -= 0.03
		}
	} else if restingHR > 0 && restingHR < 50 {
		easyBase, recoveryBase = 0.62, 0.58
	}

	raceMin, raceMax, raceTarget := raceFractions(raceKm)

	return TrainingPaces{
		Recovery: PaceRange{
			Min:    pctOfVMA(vmaKmh, recoveryBase),
			Max:    pctOfVMA(vmaKmh, recoveryBase+0.05),
			Target: pctOfVMA(vmaKmh, recoveryBase+0.02),
		},
		Easy: PaceRange{
			Min:    pctOfVMA(vmaKmh, easyBase),
			Max:    pctOfVMA(vmaKmh, easyBase+0.05),
			Target: pctOfVMA(vmaKmh, easyBase+0.02),
		},
		Endurance: PaceRange{
			Min:    pctOfVMA(vmaKmh, 0.75),
			Max:    pctOfVMA(vmaKmh, 0.80),
			Target: pctOfVMA(vmaKmh, 0.77),
		},
		Tempo: PaceRange{
			Min:    pctOfVMA(vmaKmh, 0.85),
			Max:    pctOfVMA(vmaKmh, 0.88),
			Target: pctOfVMA(vmaKmh, 0.86),
		},
		Threshold: PaceRange{
			Min:    pctOfVMA(vmaKmh, 0.88),
			Max:    pctOfVMA(vmaKmh, 0.92),
			Target: pctOfVMA(vmaKmh, 0.90),
		},
		Race: PaceRange{
			Min:    pctOfVMA(vmaKmh, raceMin),
			Max:    pctOfVMA(vmaKmh, raceMax),
			Target: pctOfVMA(vmaKmh, raceTarget),
		},
		Interval: PaceRange{
			Min:    pctOfVMA(vmaKmh, 1.00),
			Max:    pctOfVMA(vmaKmh, 1.05),
			Target: pctOfVMA(vmaKmh, 1.00),
		},
	}
}

// raceFractions returns the VMA fractions sustainable for the race
// distance. Note: a higher fraction of VMA is a faster pace, so Min here is
// the slower bound of the pace range.
func raceFractions(raceKm float64) (min, max, target float64) {
	switch {
	case raceKm <= 5:
		return 0.95, 0.98, 0.96
	case raceKm <= 10:
		return 0.92, 0.95, 0.93
	default:
		return 0.88, 0.90, 0.89
	}
}

// PacesFromTarget derives the zone table from a goal time alone, for
// athletes without a known VMA. Zones are fixed offsets from goal pace.
func PacesFromTarget(targetMinutes float64, raceKm float64) TrainingPaces {
	target := targetMinutes * 60 / raceKm // sec per km

	intervalDelta := -10
	switch {
	case raceKm <= 5:
		intervalDelta = -5
	case raceKm <= 10:
		intervalDelta = -8
	}

	racePace := addSeconds(target, 0)
	return TrainingPaces{
		Recovery:  PaceRange{Min: addSeconds(target, 90), Max: addSeconds(target, 120), Target: addSeconds(target, 105)},
		Easy:      PaceRange{Min: addSeconds(target, 60), Max: addSeconds(target, 90), Target: addSeconds(target, 75)},
		Endurance: PaceRange{Min: addSeconds(target, 30), Max: addSeconds(target, 45), Target: addSeconds(target, 37)},
		Tempo:     PaceRange{Min: addSeconds(target, 15), Max: addSeconds(target, 20), Target: addSeconds(target, 17)},
		Threshold: PaceRange{Min: addSeconds(target, 5), Max: addSeconds(target, 10), Target: addSeconds(target, 7)},
		Race:      PaceRange{Min: racePace, Max: racePace, Target: racePace},
		Interval: PaceRange{
			Min:    addSeconds(target, intervalDelta-5),
			Max:    addSeconds(target, intervalDelta+5),
			Target: addSeconds(target, intervalDelta),
		},
	}
}

// EstimateRaceTime predicts a finishing time from VMA using the standard
// sustainable-fraction model per distance.
func EstimateRaceTime(raceKm, vmaKmh float64) (minutes int, formatted string) {
	var pct float64
	switch {
	case raceKm <= 5:
		pct = 0.96
	case raceKm <= 10:
		pct = 0.93
	case raceKm <= 21.1:
		pct = 0.89
	case raceKm <= 42.2:
		pct = 0.82
	default:
		pct = 0.75
	}

	hours := raceKm / (vmaKmh * pct)
	totalSeconds := int(math.Round(hours * 3600))
	minutes = totalSeconds / 60

	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	if h > 0 {
		formatted = fmt.Sprintf("%d:%02d:%02d", h, m, s)
	} else {
		formatted = fmt.Sprintf("%d:%02d", m, s)
	}
	return minutes, formatted
}

// HRZone is one heart-rate training zone.
type HRZone struct {
	Name        string `json:"name"`
	MinBPM      int    `json:"min_bpm"`
	MaxBPM      int    `json:"max_bpm"`
	Description string `json:"description"`
}

// HeartRateZones derives the five training zones. With a known resting HR
// it uses the Karvonen heart-rate-reserve method, otherwise plain
// percentages of max HR.
func HeartRateZones(maxHR, restingHR int) []HRZone {
	bounds := []struct {
		name, desc string
		lo, hi     float64
	}{
		{"Z1", "active recovery", 0.50, 0.60},
		{"Z2", "aerobic endurance", 0.60, 0.70},
		{"Z3", "tempo", 0.70, 0.80},
		{"Z4", "anaerobic threshold", 0.80, 0.90},
		{"Z5", "VO2max", 0.90, 1.00},
	}

	zones := make([]HRZone, 0, len(bounds))
	for _, b := range bounds {
		var lo, hi int
		if restingHR > 0 {
			reserve := float64(maxHR - restingHR)
			lo = restingHR + int(reserve*b.lo)
			hi = restingHR + int(reserve*b.hi)
		} else {
			lo = int(float64(maxHR) * b.lo)
			hi = int(float64(maxHR) * b.hi)
		}
		if b.hi == 1.00 {
			hi = maxHR
		}
		zones = append(zones, HRZone{Name: b.name, MinBPM: lo, MaxBPM: hi, Description: b.desc})
	}
	return zones
}
