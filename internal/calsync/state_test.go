package calsync

import (
	"testing"
	"time"

	"github.com/claude/stridecoach/internal/models"
)

func TestStateDBRoundTrip(t *testing.T) {
	db, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer db.Close()

	synced, err := db.IsSynced("W1-S1", "abc")
	if err != nil {
		t.Fatalf("IsSynced: %v", err)
	}
	if synced {
		t.Error("fresh db should have nothing synced")
	}

	if err := db.MarkSynced("W1-S1", "abc"); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	synced, err = db.IsSynced("W1-S1", "abc")
	if err != nil {
		t.Fatalf("IsSynced: %v", err)
	}
	if !synced {
		t.Error("session should be synced after MarkSynced")
	}

	// A different hash for the same session means the event changed.
	synced, _ = db.IsSynced("W1-S1", "def")
	if synced {
		t.Error("changed hash should read as not synced")
	}
}

// Pending keeps only events whose current content has not been recorded.
func TestPending(t *testing.T) {
	db, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer db.Close()

	b := NewBuilder("Training", "18:00")
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	plan := &models.Plan{
		Weeks: []models.Week{{
			WeekNumber: 1,
			Sessions: []models.Session{
				scheduledSession("W1-S1", date, "07:00", 45),
				scheduledSession("W1-S2", date.AddDate(0, 0, 2), "07:00", 60),
			},
		}},
	}
	events := b.PlanEvents(plan)

	pending, err := db.Pending(events)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}

	if err := db.MarkSynced(events[0].SessionID, events[0].Hash()); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	pending, err = db.Pending(events)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].SessionID != "W1-S2" {
		t.Fatalf("pending = %+v, want only W1-S2", pending)
	}
}
