package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/claude/stridecoach/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// SavePlan inserts a plan, storing the full week/session tree as a JSONB
// document. Saving a new active plan deactivates the athlete's previous
// active plan in the same transaction.
func (db *DB) SavePlan(ctx context.Context, plan *models.Plan) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if plan.IsActive {
		if _, err := tx.Exec(ctx,
			`UPDATE plans SET is_active = FALSE WHERE athlete_id = $1 AND is_active`,
			plan.AthleteID); err != nil {
			return fmt.Errorf("deactivating previous plans: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO plans (id, athlete_id, name, goal_distance, goal_time, start_date, race_date, is_active, doc)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET is_active = EXCLUDED.is_active, doc = EXCLUDED.doc`,
		plan.ID, plan.AthleteID, plan.Name, plan.GoalDistance, plan.GoalTime,
		plan.StartDate, plan.RaceDate, plan.IsActive, doc); err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}

	return tx.Commit(ctx)
}

// GetPlan retrieves one plan by id.
func (db *DB) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx, `SELECT doc FROM plans WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}

	var plan models.Plan
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &plan, nil
}

// GetActivePlan retrieves the athlete's single active plan.
func (db *DB) GetActivePlan(ctx context.Context, athleteID string) (*models.Plan, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT doc FROM plans WHERE athlete_id = $1 AND is_active`, athleteID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying active plan: %w", err)
	}

	var plan models.Plan
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &plan, nil
}

// PlanSummary is the list-view projection of a plan.
type PlanSummary struct {
	ID           string    `json:"id"`
	AthleteID    string    `json:"athlete_id"`
	Name         string    `json:"name"`
	GoalDistance string    `json:"goal_distance"`
	GoalTime     string    `json:"goal_time"`
	StartDate    time.Time `json:"start_date"`
	RaceDate     time.Time `json:"race_date"`
	IsActive     bool      `json:"is_active"`
}

// ListPlans returns the athlete's plans, newest first.
func (db *DB) ListPlans(ctx context.Context, athleteID string) ([]PlanSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, name, goal_distance, goal_time, start_date, race_date, is_active
		 FROM plans WHERE athlete_id = $1 ORDER BY start_date DESC`, athleteID)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var result []PlanSummary
	for rows.Next() {
		var p PlanSummary
		if err := rows.Scan(&p.ID, &p.AthleteID, &p.Name, &p.GoalDistance, &p.GoalTime,
			&p.StartDate, &p.RaceDate, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// UpdatePlanDoc rewrites a plan document in place, for session status
// changes and applied adaptations.
func (db *DB) UpdatePlanDoc(ctx context.Context, plan *models.Plan) error {
	doc, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	tag, err := db.Pool.Exec(ctx, `UPDATE plans SET doc = $2 WHERE id = $1`, plan.ID, doc)
	if err != nil {
		return fmt.Errorf("updating plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
