package core

import (
	"fmt"
	"time"
)

// TravelTimeMatrix maps unordered location pairs to the minimum feasible
// travel duration between them. Travel from a location to itself is
// always zero. A pair absent from the matrix is unknown and must be
// excluded from impossible-travel comparison, never treated as zero.
type TravelTimeMatrix struct {
	pairs map[pairKey]time.Duration
}

type pairKey struct {
	a, b string
}

// normalized key: lexicographically smaller location first.
func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// NewTravelTimeMatrix builds an empty matrix.
func NewTravelTimeMatrix() *TravelTimeMatrix {
	return &TravelTimeMatrix{pairs: make(map[pairKey]time.Duration)}
}

// Set records the minimum travel duration between two locations. Setting
// the reverse pair to a different duration is rejected: the matrix is
// symmetric by definition.
func (m *TravelTimeMatrix) Set(a, b string, d time.Duration) error {
	if a == "" || b == "" {
		return fmt.Errorf("%w: travel matrix entry with empty location", ErrConfig)
	}
	if d < 0 {
		return fmt.Errorf("%w: negative travel time between %q and %q", ErrConfig, a, b)
	}
	if a == b {
		if d != 0 {
			return fmt.Errorf("%w: travel time from %q to itself must be zero", ErrConfig, a)
		}
		return nil
	}
	key := newPairKey(a, b)
	if existing, ok := m.pairs[key]; ok && existing != d {
		return fmt.Errorf("%w: asymmetric travel time for pair (%q, %q): %s vs %s",
			ErrConfig, a, b, existing, d)
	}
	m.pairs[key] = d
	return nil
}

// MinTravel returns the minimum feasible travel time between two
// locations. The second return is false when the pair is unknown.
func (m *TravelTimeMatrix) MinTravel(a, b string) (time.Duration, bool) {
	if a == b {
		return 0, true
	}
	d, ok := m.pairs[newPairKey(a, b)]
	return d, ok
}

// Len returns the number of known pairs.
func (m *TravelTimeMatrix) Len() int {
	return len(m.pairs)
}
