package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
)

// timestamp layouts accepted in event records. Zone-less timestamps are
// interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// wireEvent is the line-delimited record shape produced by badge
// readers and the simulator.
type wireEvent struct {
	BadgeID   string `json:"badge_id"`
	UserID    string `json:"user_id"`
	Location  string `json:"location"`
	Room      string `json:"room"`
	Timestamp string `json:"timestamp"`
	Direction string `json:"direction"`
	Result    string `json:"result"`
}

// Result of one event-log ingestion pass.
type Result struct {
	Events  []core.Event
	Skipped int
}

// ReadEvents stream-ingests a newline-delimited JSON event log. Blank
// lines are ignored. A malformed line fails the read unless lenient is
// set, in which case it is skipped and tallied.
func ReadEvents(r io.Reader, lenient bool, logger zerolog.Logger) (*Result, error) {
	res := &Result{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := ParseEvent(line)
		if err != nil {
			if lenient {
				res.Skipped++
				logger.Warn().Int("line", lineNo).Err(err).Msg("skipping malformed event record")
				continue
			}
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		res.Events = append(res.Events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}

	logger.Info().Int("events", len(res.Events)).Int("skipped", res.Skipped).Msg("event log ingested")
	return res, nil
}

// ReadEventsFile ingests a JSONL event log from disk.
func ReadEventsFile(path string, lenient bool, logger zerolog.Logger) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	defer f.Close()
	return ReadEvents(f, lenient, logger)
}

// ParseEvent parses one wire-format event record into its canonical
// form. The collector uses the same parser, so collected logs always
// re-ingest cleanly.
func ParseEvent(line []byte) (core.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(line, &w); err != nil {
		return core.Event{}, fmt.Errorf("%w: %v", core.ErrMalformedEvent, err)
	}

	ts, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return core.Event{}, err
	}

	event := core.Event{
		BadgeID:   w.BadgeID,
		UserID:    w.UserID,
		Location:  w.Location,
		Room:      w.Room,
		Timestamp: ts,
		Direction: core.Direction(w.Direction),
		Result:    core.Result(w.Result),
	}
	if err := validateWire(event); err != nil {
		return core.Event{}, err
	}
	return event, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: missing timestamp", core.ErrMalformedEvent)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable timestamp %q", core.ErrMalformedEvent, raw)
}

func validateWire(e core.Event) error {
	switch {
	case e.BadgeID == "":
		return fmt.Errorf("%w: missing badge_id", core.ErrMalformedEvent)
	case e.UserID == "":
		return fmt.Errorf("%w: missing user_id", core.ErrMalformedEvent)
	case e.Location == "":
		return fmt.Errorf("%w: missing location", core.ErrMalformedEvent)
	case e.Room == "":
		return fmt.Errorf("%w: missing room", core.ErrMalformedEvent)
	case !e.Direction.Valid():
		return fmt.Errorf("%w: invalid direction %q", core.ErrMalformedEvent, e.Direction)
	case !e.Result.Valid():
		return fmt.Errorf("%w: invalid result %q", core.ErrMalformedEvent, e.Result)
	}
	return nil
}
