package plangen

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/claude/stridecoach/internal/models"
)

// RaceDistance selects a plan template.
type RaceDistance string

const (
	Race5K   RaceDistance = "5K"
	Race10K  RaceDistance = "10K"
	RaceHalf RaceDistance = "half_marathon"
)

// Km returns the race distance in kilometers, or 0 for unknown values.
func (r RaceDistance) Km() float64 {
	switch r {
	case Race5K:
		return 5
	case Race10K:
		return 10
	case RaceHalf:
		return 21.1
	}
	return 0
}

const minPlanWeeks = 8

// Request carries everything needed to generate a plan.
type Request struct {
	AthleteID       string
	Distance        RaceDistance
	StartDate       time.Time
	RaceDate        time.Time
	SessionsPerWeek int
	PreferredDays   []int // 1 = Monday
	TargetMinutes   float64
	VMAKmh          float64 // 0 when unknown
	RestingHR       int
}

// Generator builds plans from a request and the derived pace table.
type Generator struct {
	req   Request
	paces TrainingPaces
	start time.Time // snapped to Monday
	weeks int
}

// NewGenerator validates the request and derives the pace table. Paces
// come from VMA when known, otherwise from the goal time alone.
func NewGenerator(req Request) (*Generator, error) {
	raceKm := req.Distance.Km()
	if raceKm == 0 {
		return nil, fmt.Errorf("unsupported race distance %q", req.Distance)
	}
	if req.TargetMinutes <= 0 && req.VMAKmh <= 0 {
		return nil, fmt.Errorf("either a target time or a VMA is required")
	}

	start := mondayOf(req.StartDate)
	weeks := int(req.RaceDate.Sub(start).Hours() / 24 / 7)
	if weeks < minPlanWeeks {
		return nil, fmt.Errorf("plan spans %d weeks, want at least %d", weeks, minPlanWeeks)
	}

	if req.SessionsPerWeek == 0 {
		req.SessionsPerWeek = 4
	}
	if len(req.PreferredDays) == 0 {
		req.PreferredDays = []int{2, 4, 6, 7} // Tue, Thu, Sat, Sun
	}

	var paces TrainingPaces
	if req.VMAKmh > 0 {
		var targetPaceSec float64
		if req.TargetMinutes > 0 {
			targetPaceSec = req.TargetMinutes * 60 / raceKm
		}
		paces = PacesFromVMA(req.VMAKmh, req.RestingHR, targetPaceSec, raceKm)
	} else {
		paces = PacesFromTarget(req.TargetMinutes, raceKm)
	}

	return &Generator{req: req, paces: paces, start: start, weeks: weeks}, nil
}

// Paces exposes the derived zone table.
func (g *Generator) Paces() TrainingPaces { return g.paces }

// Generate builds the full plan: base, build, and taper phases, a recovery
// week every fourth week, and the race in the final week.
func (g *Generator) Generate() (*models.Plan, error) {
	goalMinutes := g.req.TargetMinutes
	if goalMinutes <= 0 {
		est, _ := EstimateRaceTime(g.req.Distance.Km(), g.req.VMAKmh)
		goalMinutes = float64(est)
	}

	plan := &models.Plan{
		ID:              uuid.NewString(),
		AthleteID:       g.req.AthleteID,
		Name:            planName(g.req.Distance, goalMinutes),
		Description:     fmt.Sprintf("Structured 3-phase plan targeting %s in %s", g.req.Distance, formatGoal(goalMinutes)),
		GoalDistance:    string(g.req.Distance),
		GoalTime:        formatGoal(goalMinutes),
		TargetPacePerKm: g.paces.Race.Target,
		StartDate:       g.start,
		RaceDate:        g.req.RaceDate,
		DurationWeeks:   g.weeks,
		SessionsPerWeek: g.req.SessionsPerWeek,
		PreferredDays:   g.req.PreferredDays,
		CreatedAt:       time.Now(),
		IsActive:        true,
	}

	basEnd, buildEnd := g.phaseBounds()
	for n := 1; n <= g.weeks; n++ {
		var phase models.TrainingPhase
		switch {
		case n <= basEnd:
			phase = models.PhaseBase
		case n <= buildEnd:
			phase = models.PhaseBuild
		default:
			phase = models.PhaseTaper
		}
		plan.Weeks = append(plan.Weeks, g.buildWeek(n, phase))
	}

	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("generated plan failed validation: %w", err)
	}
	return plan, nil
}

// phaseBounds returns the last week numbers of the base and build phases.
func (g *Generator) phaseBounds() (baseEnd, buildEnd int) {
	switch {
	case g.weeks <= 10:
		return 3, 8
	case g.weeks <= 12:
		return 4, 10
	default:
		baseEnd = int(float64(g.weeks) * 0.3)
		buildEnd = baseEnd + int(float64(g.weeks)*0.6)
		return baseEnd, buildEnd
	}
}

func (g *Generator) buildWeek(n int, phase models.TrainingPhase) models.Week {
	weekStart := g.start.AddDate(0, 0, (n-1)*7)

	isRecovery := n%4 == 0 && n < g.weeks-2
	weekType := models.WeekNormal
	if isRecovery {
		weekType = models.WeekRecovery
	}
	if n == g.weeks {
		weekType = models.WeekRace
	}

	week := models.Week{
		WeekNumber: n,
		StartDate:  weekStart,
		EndDate:    weekStart.AddDate(0, 0, 6),
		Phase:      phase,
		Type:       weekType,
	}

	var sessions []models.Session
	switch {
	case weekType == models.WeekRace:
		sessions = g.raceWeekSessions(n)
	case phase == models.PhaseBase:
		sessions = g.baseSessions(n, isRecovery)
	case phase == models.PhaseBuild:
		sessions = g.buildSessions(n, isRecovery)
	default:
		sessions = g.taperSessions(n)
	}

	if len(sessions) > g.req.SessionsPerWeek && weekType != models.WeekRace {
		sessions = sessions[:g.req.SessionsPerWeek]
	}

	for i := range sessions {
		s := &sessions[i]
		day := g.req.PreferredDays[i%len(g.req.PreferredDays)]
		if s.Type == models.SessionRace {
			day = 7
		}
		s.DayOfWeek = day
		s.SessionNumber = i + 1
		s.ScheduledDate = weekStart.AddDate(0, 0, day-1)
		week.Sessions = append(week.Sessions, *s)
	}
	return week
}

func scaled(minutes int, factor float64) int {
	return int(math.Round(float64(minutes) * factor))
}

func (g *Generator) baseSessions(n int, recovery bool) []models.Session {
	factor := 1.0
	if recovery {
		factor = 0.75
	}
	longDuration := 60 + n*5
	if longDuration > 90 {
		longDuration = 90
	}

	return []models.Session{
		{
			ID: fmt.Sprintf("W%d-S1", n), WeekNumber: n,
			Type: models.SessionEndurance, Intensity: models.IntensityEasy,
			Title:           "Aerobic base run",
			Description:     "Easy conversational-pace running",
			DurationMinutes: scaled(50, factor),
			DistanceKm:      round1(8.0 * factor),
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "steady endurance", DurationMinutes: scaled(50, factor), PaceMinPerKm: g.paces.Endurance.Target, PaceMaxPerKm: g.paces.Endurance.Max, HRZone: "75-80% HRmax", Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S2", n), WeekNumber: n,
			Type: models.SessionFartlek, Intensity: models.IntensityModerate,
			Title:           "Light fartlek",
			Description:     "Free-form surges on rolling terrain",
			DurationMinutes: scaled(45, factor),
			DistanceKm:      round1(7.5 * factor),
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "warm-up", DurationMinutes: 10, PaceMinPerKm: g.paces.Easy.Target, Repetitions: 1},
				{Description: "fartlek surges", DurationMinutes: scaled(25, factor), PaceMinPerKm: g.paces.Tempo.Target, HRZone: "80-87% HRmax", Repetitions: 1},
				{Description: "cool-down", DurationMinutes: 10, PaceMinPerKm: g.paces.Recovery.Max, Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S3", n), WeekNumber: n,
			Type: models.SessionEndurance, Intensity: models.IntensityEasy,
			Title:           "Easy run",
			Description:     "Short aerobic maintenance run",
			DurationMinutes: scaled(40, factor),
			DistanceKm:      round1(6.5 * factor),
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "endurance", DurationMinutes: scaled(40, factor), PaceMinPerKm: g.paces.Endurance.Target, HRZone: "75-80% HRmax", Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S4", n), WeekNumber: n,
			Type: models.SessionLongRun, Intensity: models.IntensityModerate,
			Title:           fmt.Sprintf("Long run %dmin", scaled(longDuration, factor)),
			Description:     "Long run at a comfortable aerobic effort",
			DurationMinutes: scaled(longDuration, factor),
			DistanceKm:      round1(float64(longDuration) / 6 * factor),
			IsKeySession:    true,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "long endurance", DurationMinutes: scaled(longDuration, factor), PaceMinPerKm: g.paces.Endurance.Min, PaceMaxPerKm: g.paces.Endurance.Max, HRZone: "75-82% HRmax", Repetitions: 1},
			},
		},
	}
}

func (g *Generator) buildSessions(n int, recovery bool) []models.Session {
	factor := 1.0
	if recovery {
		factor = 0.8
	}
	longDuration := 75 + n*3
	if longDuration > 105 {
		longDuration = 105
	}
	reps := int(math.Round(8 * factor))

	return []models.Session{
		{
			ID: fmt.Sprintf("W%d-S1", n), WeekNumber: n,
			Type: models.SessionIntervals, Intensity: models.IntensityVeryHard,
			Title:           "Short intervals",
			Description:     "Short repeats at maximal aerobic speed",
			DurationMinutes: scaled(55, factor),
			DistanceKm:      round1(9.0 * factor),
			IsKeySession:    true,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "warm-up", DurationMinutes: 15, PaceMinPerKm: g.paces.Easy.Target, Repetitions: 1},
				{Description: "400m repeat", DistanceKm: 0.4, PaceMinPerKm: g.paces.Interval.Target, HRZone: "95-100% HRmax", Repetitions: reps, RecoveryMinutes: 1.5},
				{Description: "cool-down", DurationMinutes: 10, PaceMinPerKm: g.paces.Recovery.Max, Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S2", n), WeekNumber: n,
			Type: models.SessionThreshold, Intensity: models.IntensityHard,
			Title:           "Race-pace blocks",
			Description:     "Sustained blocks at goal race pace",
			DurationMinutes: scaled(60, factor),
			DistanceKm:      round1(12.0 * factor),
			IsKeySession:    true,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "warm-up", DurationMinutes: 15, PaceMinPerKm: g.paces.Easy.Target, Repetitions: 1},
				{Description: "race-pace block", DurationMinutes: scaled(10, factor), PaceMinPerKm: g.paces.Race.Target, PaceMaxPerKm: g.paces.Race.Max, HRZone: "87-92% HRmax", Repetitions: 3, RecoveryMinutes: 2},
				{Description: "cool-down", DurationMinutes: 10, PaceMinPerKm: g.paces.Recovery.Max, Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S3", n), WeekNumber: n,
			Type: models.SessionEndurance, Intensity: models.IntensityEasy,
			Title:           "Active recovery run",
			Description:     "Easy running between the quality days",
			DurationMinutes: scaled(45, factor),
			DistanceKm:      round1(7.5 * factor),
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "easy endurance", DurationMinutes: scaled(45, factor), PaceMinPerKm: g.paces.Endurance.Target, HRZone: "75-80% HRmax", Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S4", n), WeekNumber: n,
			Type: models.SessionLongRun, Intensity: models.IntensityModerate,
			Title:           fmt.Sprintf("Progressive long run %dmin", scaled(longDuration, factor)),
			Description:     "Long run finishing at race pace",
			DurationMinutes: scaled(longDuration, factor),
			DistanceKm:      round1(float64(longDuration) / 5.8 * factor),
			IsKeySession:    true,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "base endurance", DurationMinutes: scaled(longDuration-20, factor), PaceMinPerKm: g.paces.Endurance.Target, HRZone: "75-80% HRmax", Repetitions: 1},
				{Description: "race-pace finish", DurationMinutes: scaled(20, factor), PaceMinPerKm: g.paces.Race.Target, HRZone: "87-90% HRmax", Repetitions: 1},
			},
		},
	}
}

func (g *Generator) taperSessions(n int) []models.Session {
	weeksToRace := g.weeks - n + 1
	reduction := 0.85
	if weeksToRace == 2 {
		reduction = 0.7
	}
	reps := int(math.Round(6 * reduction))

	return []models.Session{
		{
			ID: fmt.Sprintf("W%d-S1", n), WeekNumber: n,
			Type: models.SessionIntervals, Intensity: models.IntensityHard,
			Title:           "Sharpening intervals",
			Description:     "Reduced volume, intensity maintained",
			DurationMinutes: scaled(50, reduction),
			DistanceKm:      round1(8.0 * reduction),
			IsKeySession:    true,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "warm-up", DurationMinutes: 15, PaceMinPerKm: g.paces.Easy.Target, Repetitions: 1},
				{Description: "300m repeat", DistanceKm: 0.3, PaceMinPerKm: g.paces.Interval.Target, Repetitions: reps, RecoveryMinutes: 1.5},
				{Description: "cool-down", DurationMinutes: 10, PaceMinPerKm: g.paces.Recovery.Max, Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S2", n), WeekNumber: n,
			Type: models.SessionTempo, Intensity: models.IntensityModerate,
			Title:           "Race-pace reminder",
			Description:     "Short blocks at goal pace",
			DurationMinutes: scaled(55, reduction),
			DistanceKm:      round1(10.0 * reduction),
			IsKeySession:    true,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "warm-up", DurationMinutes: 15, PaceMinPerKm: g.paces.Easy.Target, Repetitions: 1},
				{Description: "race-pace block", DurationMinutes: scaled(8, reduction), PaceMinPerKm: g.paces.Race.Target, Repetitions: 2, RecoveryMinutes: 3},
				{Description: "cool-down", DurationMinutes: 10, PaceMinPerKm: g.paces.Recovery.Max, Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S3", n), WeekNumber: n,
			Type: models.SessionEndurance, Intensity: models.IntensityEasy,
			Title:           "Easy endurance",
			Description:     "Active recovery",
			DurationMinutes: scaled(45, reduction),
			DistanceKm:      round1(7.5 * reduction),
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "endurance", DurationMinutes: scaled(45, reduction), PaceMinPerKm: g.paces.Endurance.Target, HRZone: "75-80% HRmax", Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S4", n), WeekNumber: n,
			Type: models.SessionLongRun, Intensity: models.IntensityEasy,
			Title:           "Shortened long run",
			Description:     "Reduced long run for the taper",
			DurationMinutes: scaled(65, reduction),
			DistanceKm:      round1(11.0 * reduction),
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "comfortable endurance", DurationMinutes: scaled(65, reduction), PaceMinPerKm: g.paces.Endurance.Max, HRZone: "75-82% HRmax", Repetitions: 1},
			},
		},
	}
}

func (g *Generator) raceWeekSessions(n int) []models.Session {
	raceKm := g.req.Distance.Km()
	raceMinutes := int(math.Round(float64(PaceToSeconds(g.paces.Race.Target)) * raceKm / 60))

	return []models.Session{
		{
			ID: fmt.Sprintf("W%d-S1", n), WeekNumber: n,
			Type: models.SessionEndurance, Intensity: models.IntensityVeryEasy,
			Title:           "Shakeout jog",
			Description:     "Very easy running to stay loose",
			DurationMinutes: 30,
			DistanceKm:      5.0,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "very light endurance", DurationMinutes: 30, PaceMinPerKm: g.paces.Recovery.Max, HRZone: "70-75% HRmax", Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-S2", n), WeekNumber: n,
			Type: models.SessionIntervals, Intensity: models.IntensityModerate,
			Title:           "Pre-race strides",
			Description:     "A few short accelerations to keep the legs sharp",
			DurationMinutes: 35,
			DistanceKm:      5.5,
			Status:          models.StatusPlanned,
			CanBePostponed:  true, CanBeReplaced: true,
			Structure: []models.PaceZone{
				{Description: "warm-up", DurationMinutes: 15, PaceMinPerKm: g.paces.Easy.Target, Repetitions: 1},
				{Description: "200m stride", DistanceKm: 0.2, PaceMinPerKm: g.paces.Interval.Max, Repetitions: 4, RecoveryMinutes: 2},
				{Description: "cool-down", DurationMinutes: 10, PaceMinPerKm: g.paces.Recovery.Max, Repetitions: 1},
			},
		},
		{
			ID: fmt.Sprintf("W%d-RACE", n), WeekNumber: n,
			Type: models.SessionRace, Intensity: models.IntensityVeryHard,
			Title:           fmt.Sprintf("%s race", g.req.Distance),
			Description:     fmt.Sprintf("Goal race. Target %s/km average.", g.paces.Race.Target),
			DurationMinutes: raceMinutes,
			DistanceKm:      raceKm,
			IsKeySession:    true,
			Status:          models.StatusPlanned,
			CanBePostponed:  false, CanBeReplaced: false,
			Structure: []models.PaceZone{
				{Description: "settle in", DistanceKm: round1(raceKm * 0.25), PaceMinPerKm: g.paces.Endurance.Max, HRZone: "82-87% HRmax", Repetitions: 1},
				{Description: "cruise", DistanceKm: round1(raceKm * 0.45), PaceMinPerKm: g.paces.Race.Target, HRZone: "87-92% HRmax", Repetitions: 1},
				{Description: "final push", DistanceKm: round1(raceKm * 0.3), PaceMinPerKm: g.paces.Race.Max, HRZone: "90-95% HRmax", Repetitions: 1},
			},
		},
	}
}

func planName(d RaceDistance, goalMinutes float64) string {
	goal := formatGoal(goalMinutes)
	switch d {
	case RaceHalf:
		return fmt.Sprintf("Half Marathon Sub %s", goal)
	case Race10K:
		return fmt.Sprintf("10K Sub %s", goal)
	default:
		return fmt.Sprintf("5K Sub %s", goal)
	}
}

// formatGoal renders minutes as "H:MM:SS" above an hour, "MMmin" below.
func formatGoal(minutes float64) string {
	total := int(math.Round(minutes * 60))
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%dmin", total/60)
}

// mondayOf snaps a date back to the Monday of its week.
func mondayOf(d time.Time) time.Time {
	d = d.Truncate(24 * time.Hour)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
