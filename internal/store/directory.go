package store

import (
	"fmt"

	"github.com/badgetrace-project/badgetrace/internal/core"
)

// UserDirectory maps user identity to authorization metadata. Loaded
// once at run start, read-only during analysis.
type UserDirectory struct {
	profiles map[string]core.UserProfile
}

// NewUserDirectory loads profiles, failing on a duplicate user_id:
// ambiguous identity cannot be safely analyzed.
func NewUserDirectory(profiles []core.UserProfile) (*UserDirectory, error) {
	d := &UserDirectory{profiles: make(map[string]core.UserProfile, len(profiles))}
	for _, p := range profiles {
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: profile with empty user_id", core.ErrMalformedEvent)
		}
		if _, exists := d.profiles[p.UserID]; exists {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateUser, p.UserID)
		}
		d.profiles[p.UserID] = p
	}
	return d, nil
}

// Lookup returns the profile for a user, with ok=false when the user is
// unknown to the directory.
func (d *UserDirectory) Lookup(userID string) (core.UserProfile, bool) {
	p, ok := d.profiles[userID]
	return p, ok
}

// IsAuthorized reports whether a user may access a room at a location:
// true iff the location is in the user's authorized locations AND the
// authorized-rooms set is empty (meaning all rooms) or contains the
// room. Unknown users are never authorized — the caller must treat that
// as an anomaly signal, not an error.
func (d *UserDirectory) IsAuthorized(userID, location, room string) bool {
	p, ok := d.profiles[userID]
	if !ok {
		return false
	}
	if !contains(p.AuthorizedLocations, location) {
		return false
	}
	return len(p.AuthorizedRooms) == 0 || contains(p.AuthorizedRooms, room)
}

// Count returns the number of loaded profiles.
func (d *UserDirectory) Count() int {
	return len(d.profiles)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
