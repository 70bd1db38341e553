package traveler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/store"
)

const DetectorName = "impossible_traveler"

// Detector flags badges observed at two locations closer in time than
// the minimum feasible travel duration between them — the classic
// cloned-badge signal.
type Detector struct {
	logger zerolog.Logger
	matrix *core.TravelTimeMatrix
}

func New(cfg *core.AnalysisConfig, logger zerolog.Logger) *Detector {
	return &Detector{
		logger: logger.With().Str("detector", DetectorName).Logger(),
		matrix: cfg.Matrix(),
	}
}

func (d *Detector) Name() string { return DetectorName }
func (d *Detector) Describe() string {
	return "Cloned-badge detection via physically impossible travel between facility locations"
}

// Detect scans each badge's ordered event sequence pairwise. Only
// consecutive events are compared: travel time is transitive across the
// timeline, so no non-adjacent pair can produce a tighter violation
// than some adjacent pair. O(n) in total event count.
func (d *Detector) Detect(events *store.EventStore, _ *store.UserDirectory) []core.Finding {
	var findings []core.Finding

	for _, badgeID := range events.Badges() {
		seq := events.ForBadge(badgeID)
		if len(seq) < 2 {
			continue
		}

		for i := 1; i < len(seq); i++ {
			prev, cur := seq[i-1], seq[i]
			if prev.Location == cur.Location {
				continue
			}

			minTravel, known := d.matrix.MinTravel(prev.Location, cur.Location)
			if !known {
				// Unknown pair: excluded from comparison, never
				// treated as zero.
				continue
			}

			elapsed := cur.Timestamp.Sub(prev.Timestamp)
			if elapsed >= minTravel {
				continue
			}

			findings = append(findings, d.buildFinding(badgeID, prev, cur, elapsed, minTravel))
		}
	}

	d.logger.Debug().Int("findings", len(findings)).Msg("impossible-travel scan complete")
	return findings
}

func (d *Detector) buildFinding(badgeID string, prev, cur core.Event, elapsed, minTravel time.Duration) core.Finding {
	// Identical timestamps at different locations are universally
	// impossible; everything under half the feasible minimum is also
	// treated as high confidence of a cloned badge.
	severity := core.SeverityMedium
	if elapsed <= 0 || elapsed < minTravel/2 {
		severity = core.SeverityHigh
	}

	f := core.NewFinding(core.KindClonedBadge, badgeID, severity,
		fmt.Sprintf("badge %s observed at %s and %s only %s apart (minimum feasible travel %s)",
			badgeID, prev.Location, cur.Location, elapsed, minTravel))
	f.Detector = DetectorName
	f.Evidence = []core.Evidence{
		{Event: &prev},
		{Event: &cur},
		{Metrics: map[string]float64{
			"elapsed_minutes":    elapsed.Minutes(),
			"min_travel_minutes": minTravel.Minutes(),
			"deficit_ratio":      deficitRatio(elapsed, minTravel),
		}},
	}
	return f
}

func deficitRatio(elapsed, minTravel time.Duration) float64 {
	if minTravel <= 0 {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed.Minutes() / minTravel.Minutes()
}
