package traveler

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/store"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func analysisConfig(t *testing.T) *core.AnalysisConfig {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Analysis.TravelTimes = []core.TravelTimeEntry{
		{From: "X", To: "Y", MinTravel: core.Duration(60 * time.Minute)},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config Validate() error: %v", err)
	}
	return &cfg.Analysis
}

func swipeAt(badge, location string, at time.Time) core.Event {
	return core.Event{
		BadgeID:   badge,
		UserID:    "u-" + badge,
		Location:  location,
		Room:      location + "-LOBBY",
		Timestamp: at,
		Direction: core.DirectionEntry,
		Result:    core.ResultGranted,
	}
}

func detect(t *testing.T, cfg *core.AnalysisConfig, events ...core.Event) []core.Finding {
	t.Helper()
	s, err := store.NewEventStore(events, store.Options{})
	if err != nil {
		t.Fatalf("NewEventStore() error: %v", err)
	}
	return New(cfg, zerolog.Nop()).Detect(s, nil)
}

func TestSingleEventBadgeEmitsNothing(t *testing.T) {
	findings := detect(t, analysisConfig(t), swipeAt("b1", "X", t0))
	if len(findings) != 0 {
		t.Fatalf("got %d findings for single-event badge, want 0", len(findings))
	}
}

func TestDeepViolationIsHigh(t *testing.T) {
	// 5 minutes elapsed against a 60-minute floor: under half, high.
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "X", t0),
		swipeAt("b1", "Y", t0.Add(5*time.Minute)),
	)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Kind != core.KindClonedBadge || f.Subject != "b1" {
		t.Errorf("unexpected finding: %+v", f)
	}
	if f.Severity != core.SeverityHigh {
		t.Errorf("severity = %v, want HIGH", f.Severity)
	}
	if len(f.Evidence) != 3 {
		t.Fatalf("evidence items = %d, want 2 events + metrics", len(f.Evidence))
	}
}

func TestShallowViolationIsMedium(t *testing.T) {
	// 50 of 60 minutes elapsed: violation, but above half the floor.
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "X", t0),
		swipeAt("b1", "Y", t0.Add(50*time.Minute)),
	)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Severity != core.SeverityMedium {
		t.Errorf("severity = %v, want MEDIUM", findings[0].Severity)
	}
}

func TestFeasibleTravelEmitsNothing(t *testing.T) {
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "X", t0),
		swipeAt("b1", "Y", t0.Add(90*time.Minute)),
	)
	if len(findings) != 0 {
		t.Fatalf("got %d findings for feasible travel, want 0", len(findings))
	}
}

func TestUnknownPairIsExcluded(t *testing.T) {
	// No (X, Z) matrix entry: unknown, not a violation, regardless of
	// elapsed time.
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "X", t0),
		swipeAt("b1", "Z", t0.Add(time.Minute)),
	)
	if len(findings) != 0 {
		t.Fatalf("got %d findings for unknown pair, want 0", len(findings))
	}
}

func TestIdenticalTimestampsAlwaysHigh(t *testing.T) {
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "X", t0),
		swipeAt("b1", "Y", t0),
	)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Severity != core.SeverityHigh {
		t.Errorf("severity = %v, want HIGH for zero elapsed time", findings[0].Severity)
	}
}

func TestSameLocationMovesAreIgnored(t *testing.T) {
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "X", t0),
		swipeAt("b1", "X", t0.Add(time.Second)),
	)
	if len(findings) != 0 {
		t.Fatalf("got %d findings for same-location swipes, want 0", len(findings))
	}
}

func TestConsecutivePairsOnly(t *testing.T) {
	// X -> Y violates; Y -> X back-travel after a feasible gap does
	// not. Exactly one finding, attributed to the adjacent pair.
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "X", t0),
		swipeAt("b1", "Y", t0.Add(10*time.Minute)),
		swipeAt("b1", "X", t0.Add(10*time.Minute+2*time.Hour)),
	)
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
}

func TestMatrixSymmetry(t *testing.T) {
	// The (X, Y) entry also covers Y -> X travel.
	findings := detect(t, analysisConfig(t),
		swipeAt("b1", "Y", t0),
		swipeAt("b1", "X", t0.Add(5*time.Minute)),
	)
	if len(findings) != 1 {
		t.Fatalf("got %d findings for reversed pair, want 1", len(findings))
	}
}
