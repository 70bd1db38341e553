package core

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// FindingKind discriminates the anomaly classes emitted by the detectors.
type FindingKind string

const (
	KindClonedBadge        FindingKind = "cloned_badge"
	KindUnauthorizedAccess FindingKind = "unauthorized_access"
	KindRoomUsagePattern   FindingKind = "room_usage_pattern"
)

// Evidence is one contributing item attached to a finding: either a
// reference to a source event, a bag of derived metrics, or both. The
// Tag marks evidence that needs distinct handling downstream (e.g.
// "unknown_user").
type Evidence struct {
	Event   *Event             `json:"event,omitempty"`
	Tag     string             `json:"tag,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Finding is one detected anomaly. Findings are pure derived data:
// created by a detector, never mutated, collected into the report.
type Finding struct {
	ID          string      `json:"id"`
	Kind        FindingKind `json:"kind"`
	Subject     string      `json:"subject"`
	Severity    Severity    `json:"severity"`
	Evidence    []Evidence  `json:"evidence,omitempty"`
	Description string      `json:"description"`
	Detector    string      `json:"detector,omitempty"`
	DetectedAt  time.Time   `json:"detected_at"`
}

// NewFinding creates a Finding with a generated ID and current timestamp.
func NewFinding(kind FindingKind, subject string, severity Severity, description string) Finding {
	return Finding{
		ID:          uuid.New().String(),
		Kind:        kind,
		Subject:     subject,
		Severity:    severity,
		Description: description,
		DetectedAt:  time.Now().UTC(),
	}
}

// Marshal serializes the finding to JSON.
func (f *Finding) Marshal() ([]byte, error) {
	return json.Marshal(f)
}
