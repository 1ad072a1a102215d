package mcp

import (
	"context"
	"testing"
)

// TestAthleteIDFromContextDefault verifies the default athlete when no
// value is set in the context.
func TestAthleteIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := AthleteIDFromContext(ctx); id != DefaultAthleteID {
		t.Errorf("AthleteIDFromContext(empty) = %q, want %q", id, DefaultAthleteID)
	}
}

// TestAthleteIDFromContextSet verifies the athlete ID is extracted from
// context after being set by WithAthleteID.
func TestAthleteIDFromContextSet(t *testing.T) {
	ctx := WithAthleteID(context.Background(), "runner-42")
	if id := AthleteIDFromContext(ctx); id != "runner-42" {
		t.Errorf("AthleteIDFromContext = %q, want runner-42", id)
	}
}

// TestParseDate verifies the tool-facing date format.
func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-05")
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if d.Year() != 2026 || d.Month() != 3 || d.Day() != 5 {
		t.Errorf("parseDate = %v, want 2026-03-05", d)
	}

	if _, err := parseDate("yesterday"); err == nil {
		t.Error("expected error for non-date input")
	}
}
