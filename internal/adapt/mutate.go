package adapt

import (
	"fmt"
	"math"

	"github.com/claude/stridecoach/internal/models"
)

// Session mutators build a new session value from the original plus a
// transform; the original is never touched. The derived ID keeps the
// adaptation traceable back to the planned session.

// Lighten scales a session's volume by the given factor (0.75 keeps 75% of
// the volume). Duration rounds to whole minutes, distance to 2 decimals,
// and every pace zone scales by the same factor. Hard intensities are
// demoted one tier so a lightened session is never still flagged at full
// intensity.
func Lighten(s *models.Session, factor float64) *models.Session {
	out := cloneSession(s)
	out.ID = s.ID + "-adapted"
	out.OriginalID = s.ID
	out.Status = models.StatusAdapted
	out.AdaptationReason = fmt.Sprintf("session lightened to %d%% of planned volume", int(factor*100))

	out.DurationMinutes = scaleMinutes(s.DurationMinutes, factor)
	if s.DistanceKm > 0 {
		out.DistanceKm = round2(s.DistanceKm * factor)
	}

	for i := range out.Structure {
		z := &out.Structure[i]
		if z.DurationMinutes > 0 {
			z.DurationMinutes = scaleMinutes(z.DurationMinutes, factor)
		}
		if z.DistanceKm > 0 {
			z.DistanceKm = round2(z.DistanceKm * factor)
		}
	}

	switch s.Intensity {
	case models.IntensityVeryHard:
		out.Intensity = models.IntensityHard
	case models.IntensityHard:
		out.Intensity = models.IntensityModerate
	}

	return out
}

// easyZone is the canned structure used when replacing an intense session.
func easyZone(durationMinutes int) models.PaceZone {
	return models.PaceZone{
		Description:     "very easy endurance",
		DurationMinutes: durationMinutes,
		PaceMinPerKm:    "6:15",
		PaceMaxPerKm:    "6:30",
		HRZone:          "70-75% HRmax",
		Repetitions:     1,
	}
}

// ReplaceWithEasy swaps an intense session for a short recovery run: type
// RECOVERY, intensity EASY, duration capped at min(40, 60% of the original),
// a flat 6 km, and a single easy pace zone.
func ReplaceWithEasy(s *models.Session) *models.Session {
	out := cloneSession(s)
	out.ID = s.ID + "-easy"
	out.OriginalID = s.ID
	out.Type = models.SessionRecovery
	out.Intensity = models.IntensityEasy
	out.Status = models.StatusAdapted
	out.AdaptationReason = "intense session replaced with active recovery"
	out.Title = fmt.Sprintf("Active recovery (replaces %s)", s.Title)
	out.Description = "easy recovery run"

	duration := scaleMinutes(s.DurationMinutes, 0.6)
	if duration > 40 {
		duration = 40
	}
	out.DurationMinutes = duration
	out.DistanceKm = 6.0
	out.Structure = []models.PaceZone{easyZone(duration)}

	return out
}

// cloneSession deep-copies a session including its structure slice.
func cloneSession(s *models.Session) *models.Session {
	out := *s
	if len(s.Structure) > 0 {
		out.Structure = make([]models.PaceZone, len(s.Structure))
		copy(out.Structure, s.Structure)
	}
	return &out
}

func scaleMinutes(minutes int, factor float64) int {
	return int(math.Round(float64(minutes) * factor))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
