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

// UpsertDailyMetrics stores one day's metrics aggregate for an athlete.
// Re-posting the same date replaces the previous aggregate.
func (db *DB) UpsertDailyMetrics(ctx context.Context, athleteID string, m *models.DailyMetrics) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO daily_metrics (athlete_id, date, recovery_score, readiness, doc)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (athlete_id, date) DO UPDATE
		 SET recovery_score = EXCLUDED.recovery_score,
		     readiness = EXCLUDED.readiness,
		     doc = EXCLUDED.doc`,
		athleteID, m.Date, m.RecoveryScore, string(m.Readiness), doc)
	if err != nil {
		return fmt.Errorf("upserting daily metrics: %w", err)
	}
	return nil
}

// GetDailyMetrics retrieves the aggregate for one athlete-day.
func (db *DB) GetDailyMetrics(ctx context.Context, athleteID string, date time.Time) (*models.DailyMetrics, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT doc FROM daily_metrics WHERE athlete_id = $1 AND date = $2`,
		athleteID, date).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying daily metrics: %w", err)
	}

	var m models.DailyMetrics
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("decoding daily metrics: %w", err)
	}
	return &m, nil
}

// ListDailyMetrics returns aggregates in [start, end), oldest first.
func (db *DB) ListDailyMetrics(ctx context.Context, athleteID string, start, end time.Time) ([]models.DailyMetrics, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT doc FROM daily_metrics
		 WHERE athlete_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date ASC`,
		athleteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing daily metrics: %w", err)
	}
	defer rows.Close()

	var result []models.DailyMetrics
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning metrics row: %w", err)
		}
		var m models.DailyMetrics
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, fmt.Errorf("decoding daily metrics: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
