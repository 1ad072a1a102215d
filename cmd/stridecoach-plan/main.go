// Command stridecoach-plan generates a training plan from the command
// line, stores it as the active plan, and optionally exports calendar
// event payloads for the sessions that changed since the last export.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/stridecoach/internal/calsync"
	"github.com/claude/stridecoach/internal/config"
	"github.com/claude/stridecoach/internal/plangen"
	"github.com/claude/stridecoach/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	distance := flag.String("distance", "", "race distance: 5K, 10K, half_marathon (required)")
	startStr := flag.String("start", "", "training start date YYYY-MM-DD (default: next Monday)")
	raceStr := flag.String("race", "", "race date YYYY-MM-DD (required)")
	targetMinutes := flag.Float64("target", 0, "goal finish time in minutes")
	vma := flag.Float64("vma", 0, "maximal aerobic speed in km/h")
	sessionsPerWeek := flag.Int("sessions", 4, "training days per week")
	restingHR := flag.Int("resting-hr", 0, "resting heart rate in bpm")
	dryRun := flag.Bool("dry-run", false, "print the plan as JSON without storing it")
	exportEvents := flag.Bool("export-events", false, "write pending calendar event payloads to stdout")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *distance == "" || *raceStr == "" {
		fmt.Fprintf(os.Stderr, "Usage: stridecoach-plan -distance half_marathon -race 2026-05-31 [-target 105] [-vma 16.5]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	raceDate, err := time.Parse("2006-01-02", *raceStr)
	if err != nil {
		log.Error("invalid race date", "error", err)
		os.Exit(1)
	}
	startDate := time.Now().AddDate(0, 0, 7)
	if *startStr != "" {
		startDate, err = time.Parse("2006-01-02", *startStr)
		if err != nil {
			log.Error("invalid start date", "error", err)
			os.Exit(1)
		}
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	gen, err := plangen.NewGenerator(plangen.Request{
		AthleteID:       "self",
		Distance:        plangen.RaceDistance(*distance),
		StartDate:       startDate,
		RaceDate:        raceDate,
		SessionsPerWeek: *sessionsPerWeek,
		TargetMinutes:   *targetMinutes,
		VMAKmh:          *vma,
		RestingHR:       *restingHR,
	})
	if err != nil {
		log.Error("invalid plan request", "error", err)
		os.Exit(1)
	}

	plan, err := gen.Generate()
	if err != nil {
		log.Error("plan generation failed", "error", err)
		os.Exit(1)
	}
	log.Info("plan generated",
		"name", plan.Name,
		"weeks", plan.DurationWeeks,
		"goal_time", plan.GoalTime,
		"race_pace", plan.TargetPacePerKm,
	)

	if *dryRun {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			log.Error("encoding plan", "error", err)
			os.Exit(1)
		}
		return
	}

	// Store as the active plan
	ctx := context.Background()
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.SavePlan(ctx, plan); err != nil {
		log.Error("saving plan", "error", err)
		os.Exit(1)
	}
	log.Info("plan stored", "id", plan.ID)

	if !*exportEvents {
		return
	}

	// Export only sessions not yet synced with their current content
	state, err := calsync.OpenStateDB(cfg.Calendar.StatePath)
	if err != nil {
		log.Error("opening calendar state", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	builder := calsync.NewBuilder(cfg.Calendar.CalendarName, cfg.Calendar.DefaultTime)
	events := builder.PlanEvents(plan)
	pending, err := state.Pending(events)
	if err != nil {
		log.Error("reading calendar state", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pending); err != nil {
		log.Error("encoding events", "error", err)
		os.Exit(1)
	}
	for i := range pending {
		if err := state.MarkSynced(pending[i].SessionID, pending[i].Hash()); err != nil {
			log.Error("marking session synced", "session", pending[i].SessionID, "error", err)
			os.Exit(1)
		}
	}
	log.Info("calendar events exported", "count", len(pending), "skipped", len(events)-len(pending))
}
