package core

import (
	"time"

	"github.com/goccy/go-json"
)

// ReportSummary carries the aggregate counters for one analysis run.
type ReportSummary struct {
	TotalEvents    int            `json:"total_events"`
	TotalUsers     int            `json:"total_users"`
	TotalRooms     int            `json:"total_rooms"`
	SkippedRecords int            `json:"skipped_records"`
	ByKind         map[string]int `json:"by_kind"`
	BySeverity     map[string]int `json:"by_severity"`
}

// RoomSummary is the per-room usage profile computed by the classifier.
// It is carried in the report even for rooms that produced no finding,
// so the downstream renderer can show the full usage table.
type RoomSummary struct {
	Room            string  `json:"room"`
	Swipes          int     `json:"swipes"`
	DistinctUsers   int     `json:"distinct_users"`
	OffHoursSwipes  int     `json:"off_hours_swipes"`
	MedianDwellMins float64 `json:"median_dwell_mins"`
	Label           string  `json:"label"`
	Classification  string  `json:"classification"`
}

// Report is the structured output of one analysis run: severity-ranked
// findings plus summary counts. The downstream renderer consumes exactly
// this shape and owns all presentation concerns.
type Report struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Findings    []Finding     `json:"findings"`
	Rooms       []RoomSummary `json:"rooms,omitempty"`
	Summary     ReportSummary `json:"summary"`
}

// Marshal serializes the report to JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalReport deserializes a Report from JSON.
func UnmarshalReport(data []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
