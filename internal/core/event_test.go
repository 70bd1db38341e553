package core

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestSeverityJSON(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh} {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("Marshal(%v) error: %v", s, err)
		}
		var back Severity
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", data, err)
		}
		if back != s {
			t.Errorf("severity round trip: got %v, want %v", back, s)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh) {
		t.Fatal("severity ordering broken: want low < medium < high")
	}
}

func TestNewFinding(t *testing.T) {
	f := NewFinding(KindClonedBadge, "b-1042", SeverityHigh, "badge in two places")
	if f.ID == "" {
		t.Error("finding ID not generated")
	}
	if f.Kind != KindClonedBadge || f.Subject != "b-1042" || f.Severity != SeverityHigh {
		t.Errorf("unexpected finding: %+v", f)
	}
	if f.DetectedAt.IsZero() {
		t.Error("DetectedAt not set")
	}

	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var back Finding
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back.Kind != f.Kind || back.Severity != f.Severity || back.Subject != f.Subject {
		t.Errorf("finding round trip mismatch: %+v vs %+v", back, f)
	}
}

func TestDirectionResultValid(t *testing.T) {
	if !DirectionEntry.Valid() || !DirectionExit.Valid() {
		t.Error("canonical directions should be valid")
	}
	if Direction("sideways").Valid() {
		t.Error("unknown direction should be invalid")
	}
	if !ResultGranted.Valid() || !ResultDenied.Valid() {
		t.Error("canonical results should be valid")
	}
	if Result("maybe").Valid() {
		t.Error("unknown result should be invalid")
	}
}
