package store

import (
	"fmt"
	"sort"

	"github.com/badgetrace-project/badgetrace/internal/core"
)

// EventStore is the in-memory, time-ordered view over one analysis run's
// badge-swipe events. It is immutable after construction; all accessors
// return stable-sorted sequences (ascending timestamp, ties broken by
// ingestion order) that callers must not modify.
type EventStore struct {
	events  []core.Event
	byBadge map[string][]core.Event
	byRoom  map[string][]core.Event
	byUser  map[string][]core.Event
	skipped int
}

// Options controls event ingestion behavior.
type Options struct {
	// SkipInvalid excludes malformed records instead of failing the
	// load. Skipped records are tallied and surfaced in the report
	// summary.
	SkipInvalid bool
}

// ValidateEvent checks that all required event fields are present.
func ValidateEvent(e core.Event) error {
	switch {
	case e.BadgeID == "":
		return fmt.Errorf("%w: missing badge_id", core.ErrMalformedEvent)
	case e.UserID == "":
		return fmt.Errorf("%w: missing user_id", core.ErrMalformedEvent)
	case e.Location == "":
		return fmt.Errorf("%w: missing location", core.ErrMalformedEvent)
	case e.Room == "":
		return fmt.Errorf("%w: missing room", core.ErrMalformedEvent)
	case e.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", core.ErrMalformedEvent)
	case !e.Direction.Valid():
		return fmt.Errorf("%w: invalid direction %q", core.ErrMalformedEvent, e.Direction)
	case !e.Result.Valid():
		return fmt.Errorf("%w: invalid result %q", core.ErrMalformedEvent, e.Result)
	}
	return nil
}

// NewEventStore loads events into a store, sorting them by timestamp
// with ingestion order breaking ties. Malformed records fail the load
// unless opts.SkipInvalid is set.
func NewEventStore(events []core.Event, opts Options) (*EventStore, error) {
	s := &EventStore{
		events:  make([]core.Event, 0, len(events)),
		byBadge: make(map[string][]core.Event),
		byRoom:  make(map[string][]core.Event),
		byUser:  make(map[string][]core.Event),
	}

	for i, e := range events {
		if err := ValidateEvent(e); err != nil {
			if opts.SkipInvalid {
				s.skipped++
				continue
			}
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		s.events = append(s.events, e)
	}

	sort.SliceStable(s.events, func(i, j int) bool {
		return s.events[i].Timestamp.Before(s.events[j].Timestamp)
	})

	for _, e := range s.events {
		s.byBadge[e.BadgeID] = append(s.byBadge[e.BadgeID], e)
		s.byRoom[e.Room] = append(s.byRoom[e.Room], e)
		s.byUser[e.UserID] = append(s.byUser[e.UserID], e)
	}

	return s, nil
}

// All returns every event in ascending timestamp order.
func (s *EventStore) All() []core.Event {
	return s.events
}

// ForBadge returns the ordered event sequence for one badge.
func (s *EventStore) ForBadge(badgeID string) []core.Event {
	return s.byBadge[badgeID]
}

// ForRoom returns the ordered event sequence for one room.
func (s *EventStore) ForRoom(roomID string) []core.Event {
	return s.byRoom[roomID]
}

// ForUser returns the ordered event sequence for one user.
func (s *EventStore) ForUser(userID string) []core.Event {
	return s.byUser[userID]
}

// Badges returns all badge IDs in sorted order for deterministic
// iteration.
func (s *EventStore) Badges() []string {
	return sortedKeys(s.byBadge)
}

// Rooms returns all room IDs in sorted order.
func (s *EventStore) Rooms() []string {
	return sortedKeys(s.byRoom)
}

// Users returns all user IDs observed in the log in sorted order.
func (s *EventStore) Users() []string {
	return sortedKeys(s.byUser)
}

// Len returns the number of loaded events.
func (s *EventStore) Len() int {
	return len(s.events)
}

// Skipped returns the number of malformed records excluded in lenient
// mode.
func (s *EventStore) Skipped() int {
	return s.skipped
}

func sortedKeys(m map[string][]core.Event) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
