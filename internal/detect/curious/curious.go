package curious

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/store"
)

const DetectorName = "curious_user"

// evidence tag for events whose user has no directory entry.
const TagUnknownUser = "unknown_user"

// Detector flags users repeatedly attempting access to rooms they are
// not authorized for. Isolated single attempts are expected noise (an
// employee badging into the wrong floor) and never reach the report;
// unknown badges are inherently higher-risk and always escalate.
type Detector struct {
	logger    zerolog.Logger
	threshold int
}

func New(cfg *core.AnalysisConfig, logger zerolog.Logger) *Detector {
	return &Detector{
		logger:    logger.With().Str("detector", DetectorName).Logger(),
		threshold: cfg.CuriousUserThreshold,
	}
}

func (d *Detector) Name() string { return DetectorName }
func (d *Detector) Describe() string {
	return "Repeated unauthorized access attempts aggregated per user against a configurable threshold"
}

// Detect counts unauthorized attempts per user across all events,
// successful or denied. Known users produce one finding once the count
// reaches the threshold; unknown users always produce one, tagged
// distinctly in the evidence.
func (d *Detector) Detect(events *store.EventStore, users *store.UserDirectory) []core.Finding {
	type tally struct {
		count    int
		unknown  bool
		evidence []core.Evidence
	}
	tallies := make(map[string]*tally)

	for _, e := range events.All() {
		_, known := users.Lookup(e.UserID)
		if known && users.IsAuthorized(e.UserID, e.Location, e.Room) {
			continue
		}

		t, ok := tallies[e.UserID]
		if !ok {
			t = &tally{}
			tallies[e.UserID] = t
		}
		t.count++
		if !known {
			t.unknown = true
		}

		ev := e
		item := core.Evidence{Event: &ev}
		if !known {
			item.Tag = TagUnknownUser
		}
		t.evidence = append(t.evidence, item)
	}

	userIDs := make([]string, 0, len(tallies))
	for id := range tallies {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	var findings []core.Finding
	for _, userID := range userIDs {
		t := tallies[userID]

		switch {
		case t.unknown:
			f := core.NewFinding(core.KindUnauthorizedAccess, userID, core.SeverityHigh,
				fmt.Sprintf("unrecognized user %s (no directory entry) attempted access %d time(s)",
					userID, t.count))
			f.Detector = DetectorName
			f.Evidence = t.evidence
			findings = append(findings, f)

		case t.count >= d.threshold:
			severity := core.SeverityMedium
			if t.count >= 2*d.threshold {
				severity = core.SeverityHigh
			}
			f := core.NewFinding(core.KindUnauthorizedAccess, userID, severity,
				fmt.Sprintf("user %s made %d unauthorized access attempts (threshold %d)",
					userID, t.count, d.threshold))
			f.Detector = DetectorName
			f.Evidence = t.evidence
			findings = append(findings, f)
		}
	}

	d.logger.Debug().Int("findings", len(findings)).Msg("unauthorized-access scan complete")
	return findings
}
