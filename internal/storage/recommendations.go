package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/stridecoach/internal/adapt"
)

// RecommendationRecord is one adaptation decision, kept for audit and for
// reviewing how the engine behaved over a training block.
type RecommendationRecord struct {
	ID         string       `json:"id"`
	AthleteID  string       `json:"athlete_id"`
	SessionID  string       `json:"session_id"`
	Action     adapt.Action `json:"action"`
	Reason     string       `json:"reason"`
	Evidence   []string     `json:"evidence,omitempty"`
	Confidence float64      `json:"confidence"`
	CreatedAt  time.Time    `json:"created_at"`
}

// InsertRecommendation records one engine decision and returns its id.
func (db *DB) InsertRecommendation(ctx context.Context, athleteID, sessionID string, rec *adapt.Recommendation) (string, error) {
	id := uuid.NewString()

	var modified []byte
	if rec.Modified != nil {
		var err error
		modified, err = json.Marshal(rec.Modified)
		if err != nil {
			return "", fmt.Errorf("encoding modified session: %w", err)
		}
	}

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO recommendations (id, athlete_id, session_id, action, reason, evidence, confidence, modified_session, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())`,
		id, athleteID, sessionID, string(rec.Action), rec.Reason, rec.Evidence, rec.Confidence, modified)
	if err != nil {
		return "", fmt.Errorf("inserting recommendation: %w", err)
	}
	return id, nil
}

// ListRecommendations returns the athlete's most recent decisions.
func (db *DB) ListRecommendations(ctx context.Context, athleteID string, limit int) ([]RecommendationRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, athlete_id, session_id, action, reason, evidence, confidence, created_at
		 FROM recommendations
		 WHERE athlete_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		athleteID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	defer rows.Close()

	var result []RecommendationRecord
	for rows.Next() {
		var r RecommendationRecord
		var action string
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.SessionID, &action, &r.Reason,
			&r.Evidence, &r.Confidence, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning recommendation row: %w", err)
		}
		r.Action = adapt.Action(action)
		result = append(result, r)
	}
	return result, rows.Err()
}
