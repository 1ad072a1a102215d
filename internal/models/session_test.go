package models

import (
	"strings"
	"testing"
)

func TestValidatePace(t *testing.T) {
	valid := []string{"4:30", "5:00", "6:59", "12:05", "0:45"}
	for _, p := range valid {
		if err := ValidatePace(p); err != nil {
			t.Errorf("ValidatePace(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{"", "4", "4:60", "4:-5", "4:3:0", "a:30", "4:bb", "4.30"}
	for _, p := range invalid {
		if err := ValidatePace(p); err == nil {
			t.Errorf("ValidatePace(%q) = nil, want error", p)
		}
	}
}

func TestPaceZoneValidate(t *testing.T) {
	z := PaceZone{Description: "tempo", DurationMinutes: 20, PaceMinPerKm: "4:45", PaceMaxPerKm: "4:55", Repetitions: 2}
	if err := z.Validate(); err != nil {
		t.Errorf("valid zone rejected: %v", err)
	}

	z.Repetitions = 0
	if err := z.Validate(); err == nil {
		t.Error("zero repetitions accepted")
	}

	z.Repetitions = 1
	z.PaceMaxPerKm = "4:99"
	if err := z.Validate(); err == nil {
		t.Error("bad max pace accepted")
	}
}

func TestSessionValidate(t *testing.T) {
	base := func() Session {
		return Session{
			ID:              "W1-S1",
			DayOfWeek:       2,
			Type:            SessionEndurance,
			Intensity:       IntensityEasy,
			Title:           "Easy run",
			DurationMinutes: 45,
			DistanceKm:      8,
			Status:          StatusPlanned,
		}
	}

	s := base()
	if err := s.Validate(); err != nil {
		t.Errorf("valid session rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Session)
	}{
		{"missing id", func(s *Session) { s.ID = "" }},
		{"zero duration", func(s *Session) { s.DurationMinutes = 0 }},
		{"negative distance", func(s *Session) { s.DistanceKm = -1 }},
		{"day out of range", func(s *Session) { s.DayOfWeek = 8 }},
		{"rpe out of range", func(s *Session) { s.RPE = 11 }},
		{"bad zone pace", func(s *Session) {
			s.Structure = []PaceZone{{PaceMinPerKm: "bad", Repetitions: 1}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("invalid session accepted")
			}
		})
	}
}

func TestIntensityIsHard(t *testing.T) {
	for _, i := range []Intensity{IntensityVeryEasy, IntensityEasy, IntensityModerate} {
		if i.IsHard() {
			t.Errorf("%s.IsHard() = true", i)
		}
	}
	for _, i := range []Intensity{IntensityHard, IntensityVeryHard} {
		if !i.IsHard() {
			t.Errorf("%s.IsHard() = false", i)
		}
	}
}

func TestTotalDistance(t *testing.T) {
	s := Session{ID: "s", DurationMinutes: 60, DistanceKm: 12.5}
	if got := s.TotalDistance(); got != 12.5 {
		t.Errorf("declared distance = %.2f, want 12.5", got)
	}

	s = Session{
		ID:              "s",
		DurationMinutes: 60,
		Structure: []PaceZone{
			{DistanceKm: 2, PaceMinPerKm: "6:00", Repetitions: 1},
			{DistanceKm: 1.6, PaceMinPerKm: "4:50", Repetitions: 4},
			{DistanceKm: 1.5, PaceMinPerKm: "6:15", Repetitions: 1},
		},
	}
	if got := s.TotalDistance(); got != 9.9 {
		t.Errorf("summed distance = %.2f, want 9.9", got)
	}
}

func TestLoadScore(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    int
	}{
		{
			name:    "easy hour",
			session: Session{DurationMinutes: 60, Intensity: IntensityEasy},
			want:    21, // 30 * 0.7
		},
		{
			name:    "moderate hour",
			session: Session{DurationMinutes: 60, Intensity: IntensityModerate},
			want:    30,
		},
		{
			name:    "very hard hour",
			session: Session{DurationMinutes: 60, Intensity: IntensityVeryHard},
			want:    45, // 30 * 1.5
		},
		{
			name:    "duration capped",
			session: Session{DurationMinutes: 300, Intensity: IntensityModerate},
			want:    60,
		},
		{
			name:    "key session bump",
			session: Session{DurationMinutes: 60, Intensity: IntensityHard, IsKeySession: true},
			want:    42, // 30 * 1.3 * 1.1 = 42.9 truncated
		},
		{
			name:    "maximum",
			session: Session{DurationMinutes: 300, Intensity: IntensityVeryHard, IsKeySession: true},
			want:    99, // 60 * 1.5 * 1.1
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.LoadScore(); got != tt.want {
				t.Errorf("LoadScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	s := Session{
		Structure: []PaceZone{
			{DurationMinutes: 15, PaceMinPerKm: "6:00", Repetitions: 1},
			{DurationMinutes: 10, PaceMinPerKm: "4:55", Repetitions: 3, RecoveryMinutes: 2},
		},
	}
	got := s.Summary()
	for _, want := range []string{"15min @ 6:00/km", "3x 10min @ 4:55/km", "recovery 2min"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() = %q, missing %q", got, want)
		}
	}
}
