package core

import "errors"

// Load-time error taxonomy. Structural errors abort the run: a dataset
// that cannot be parsed or contains ambiguous identities cannot be
// safely analyzed. Per-record anomalies (unauthorized access, impossible
// travel) are never errors; they flow into the report as findings.
var (
	// ErrMalformedEvent marks an event record with a missing required
	// field or an unparsable timestamp. Fatal unless skip_invalid is
	// set, in which case the record is excluded and counted in the
	// report's skip tally.
	ErrMalformedEvent = errors.New("malformed event record")

	// ErrDuplicateUser marks a user directory with two profiles sharing
	// a user_id.
	ErrDuplicateUser = errors.New("duplicate user id")

	// ErrConfig marks an invalid configuration value (negative
	// threshold, percentile outside [0,1], inverted business hours,
	// asymmetric travel matrix).
	ErrConfig = errors.New("invalid configuration")
)
