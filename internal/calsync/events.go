// Package calsync turns a plan's scheduled sessions into calendar event
// payloads and tracks which sessions were already synced so repeated
// exports skip unchanged events.
package calsync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/stridecoach/internal/models"
)

// Event is a calendar event payload for one scheduled session.
type Event struct {
	SessionID   string    `json:"session_id"`
	Calendar    string    `json:"calendar"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Hash returns a stable content hash of the event so unchanged sessions
// can be skipped on later syncs.
func (e *Event) Hash() string {
	b, _ := json.Marshal(e)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Builder constructs events from scheduled sessions.
type Builder struct {
	calendar    string
	defaultTime string // HH:MM, used when a session has no scheduled time
}

// NewBuilder creates a Builder. Empty arguments fall back to the
// "Training" calendar and an 18:00 start.
func NewBuilder(calendar, defaultTime string) *Builder {
	if calendar == "" {
		calendar = "Training"
	}
	if defaultTime == "" {
		defaultTime = "18:00"
	}
	return &Builder{calendar: calendar, defaultTime: defaultTime}
}

// SessionEvent builds the event for one session. Sessions without a
// scheduled date cannot be placed on a calendar.
func (b *Builder) SessionEvent(s *models.Session) (*Event, error) {
	if s.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("session %s has no scheduled date", s.ID)
	}

	startTime := s.ScheduledTime
	if startTime == "" {
		startTime = b.defaultTime
	}
	var hour, minute int
	if _, err := fmt.Sscanf(startTime, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("session %s has invalid scheduled time %q", s.ID, startTime)
	}

	d := s.ScheduledDate
	start := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, d.Location())
	end := start.Add(time.Duration(s.DurationMinutes) * time.Minute)

	description := s.Summary()
	if description == "" {
		description = s.Description
	}
	return &Event{
		SessionID:   s.ID,
		Calendar:    b.calendar,
		Title:       s.Title,
		Description: description,
		Start:       start,
		End:         end,
	}, nil
}

// PlanEvents builds events for every scheduled session in the plan,
// skipping rest days and sessions without a date.
func (b *Builder) PlanEvents(plan *models.Plan) []Event {
	var events []Event
	for wi := range plan.Weeks {
		for si := range plan.Weeks[wi].Sessions {
			s := &plan.Weeks[wi].Sessions[si]
			if s.Type == models.SessionRest {
				continue
			}
			ev, err := b.SessionEvent(s)
			if err != nil {
				continue
			}
			events = append(events, *ev)
		}
	}
	return events
}
