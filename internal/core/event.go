package core

import (
	"time"

	"github.com/goccy/go-json"
)

// Severity represents the severity level of a finding.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "LOW":
		*s = SeverityLow
	case "MEDIUM":
		*s = SeverityMedium
	case "HIGH":
		*s = SeverityHigh
	default:
		*s = SeverityLow
	}
	return nil
}

// Direction is the swipe direction recorded by a badge reader.
type Direction string

const (
	DirectionEntry Direction = "entry"
	DirectionExit  Direction = "exit"
)

// Valid reports whether the direction is one of the recognized values.
func (d Direction) Valid() bool {
	return d == DirectionEntry || d == DirectionExit
}

// Result is the access decision recorded by a badge reader.
type Result string

const (
	ResultGranted Result = "granted"
	ResultDenied  Result = "denied"
)

func (r Result) Valid() bool {
	return r == ResultGranted || r == ResultDenied
}

// Event is a single badge swipe. Events are immutable once loaded; the
// store holds them for the lifetime of one analysis run.
type Event struct {
	BadgeID   string    `json:"badge_id"`
	UserID    string    `json:"user_id"`
	Location  string    `json:"location"`
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
	Direction Direction `json:"direction"`
	Result    Result    `json:"result"`
}

// Marshal serializes the event to its canonical JSON form.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UserProfile is one badge holder as recorded in the user directory.
// An empty AuthorizedRooms set means "all rooms at authorized locations".
type UserProfile struct {
	UserID              string   `json:"user_id"`
	DisplayName         string   `json:"display_name"`
	HomeLocation        string   `json:"home_location"`
	AuthorizedLocations []string `json:"authorized_locations"`
	AuthorizedRooms     []string `json:"authorized_rooms"`
}
