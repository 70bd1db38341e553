package core

import (
	"errors"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error: %v", err)
	}
	if cfg.Analysis.CuriousUserThreshold != 3 {
		t.Errorf("curious_user_threshold default = %d, want 3", cfg.Analysis.CuriousUserThreshold)
	}
	if time.Duration(cfg.Analysis.DefaultMinTravel) != 4*time.Hour {
		t.Errorf("default_min_travel default = %v, want 4h", time.Duration(cfg.Analysis.DefaultMinTravel))
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AnalysisConfig)
	}{
		{"zero threshold", func(a *AnalysisConfig) { a.CuriousUserThreshold = 0 }},
		{"negative threshold", func(a *AnalysisConfig) { a.CuriousUserThreshold = -2 }},
		{"percentile above one", func(a *AnalysisConfig) { a.HighTrafficPercentile = 1.5 }},
		{"negative percentile", func(a *AnalysisConfig) { a.LowTrafficPercentile = -0.1 }},
		{"off-hours fraction above one", func(a *AnalysisConfig) { a.OffHoursFraction = 2 }},
		{"inverted business hours", func(a *AnalysisConfig) {
			a.BusinessHours = BusinessHours{Start: "19:00", End: "07:00"}
		}},
		{"unparsable business hours", func(a *AnalysisConfig) {
			a.BusinessHours.Start = "late"
		}},
		{"negative travel time", func(a *AnalysisConfig) {
			a.TravelTimes = []TravelTimeEntry{{From: "A", To: "B", MinTravel: Duration(-time.Hour)}}
		}},
		{"asymmetric matrix", func(a *AnalysisConfig) {
			a.TravelTimes = []TravelTimeEntry{
				{From: "A", To: "B", MinTravel: Duration(time.Hour)},
				{From: "B", To: "A", MinTravel: Duration(2 * time.Hour)},
			}
		}},
		{"nonzero self travel", func(a *AnalysisConfig) {
			a.TravelTimes = []TravelTimeEntry{{From: "A", To: "A", MinTravel: Duration(time.Hour)}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg.Analysis)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, ErrConfig) {
				t.Errorf("Validate() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestMatrixAppliesDefaultMinTravel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.DefaultMinTravel = Duration(90 * time.Minute)
	cfg.Analysis.TravelTimes = []TravelTimeEntry{
		{From: "SEA", To: "PDX"}, // no explicit duration
		{From: "SEA", To: "IAD", MinTravel: Duration(6 * time.Hour)},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	m := cfg.Analysis.Matrix()
	if d, ok := m.MinTravel("SEA", "PDX"); !ok || d != 90*time.Minute {
		t.Errorf("MinTravel(SEA, PDX) = %v, %v; want 90m, true", d, ok)
	}
	if d, ok := m.MinTravel("IAD", "SEA"); !ok || d != 6*time.Hour {
		t.Errorf("MinTravel(IAD, SEA) = %v, %v; want 6h, true", d, ok)
	}
	if _, ok := m.MinTravel("PDX", "IAD"); ok {
		t.Error("MinTravel(PDX, IAD) known, want unknown pair")
	}
	if d, ok := m.MinTravel("SEA", "SEA"); !ok || d != 0 {
		t.Errorf("MinTravel(SEA, SEA) = %v, %v; want 0, true", d, ok)
	}
}

func TestInBusinessHours(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.BusinessHours = BusinessHours{Start: "09:00", End: "17:30"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	at := func(hour, min int) time.Time {
		return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
	}
	cases := []struct {
		t    time.Time
		want bool
	}{
		{at(8, 59), false},
		{at(9, 0), true},
		{at(12, 0), true},
		{at(17, 29), true},
		{at(17, 30), false},
		{at(23, 0), false},
	}
	for _, tc := range cases {
		if got := cfg.Analysis.InBusinessHours(tc.t); got != tc.want {
			t.Errorf("InBusinessHours(%s) = %v, want %v", tc.t.Format("15:04"), got, tc.want)
		}
	}
}

func TestDurationYAMLRoundTrip(t *testing.T) {
	var a AnalysisConfig
	raw := []byte("default_min_travel: 2h30m\ntravel_time_matrix:\n  - from: A\n    to: B\n    min_travel: 45m\n")
	if err := yaml.Unmarshal(raw, &a); err != nil {
		t.Fatalf("yaml.Unmarshal error: %v", err)
	}
	if time.Duration(a.DefaultMinTravel) != 2*time.Hour+30*time.Minute {
		t.Errorf("default_min_travel = %v, want 2h30m", time.Duration(a.DefaultMinTravel))
	}
	if len(a.TravelTimes) != 1 || time.Duration(a.TravelTimes[0].MinTravel) != 45*time.Minute {
		t.Fatalf("travel_time_matrix parsed %+v, want one 45m entry", a.TravelTimes)
	}

	out, err := yaml.Marshal(a.TravelTimes[0])
	if err != nil {
		t.Fatalf("yaml.Marshal error: %v", err)
	}
	var back TravelTimeEntry
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml re-unmarshal error: %v", err)
	}
	if back.MinTravel != a.TravelTimes[0].MinTravel {
		t.Errorf("duration round trip = %v, want %v", back.MinTravel, a.TravelTimes[0].MinTravel)
	}
}
