package roomusage

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/store"
)

const DetectorName = "room_usage"

// Classification buckets, in precedence order (first match wins).
const (
	ClassOffHoursAnomaly = "off_hours_anomaly"
	ClassHighTraffic     = "high_traffic"
	ClassLowTraffic      = "low_traffic"
	ClassNormal          = "normal"
)

// Inferred room labels, derived from dwell time and hour-of-day shape.
const (
	LabelLobby      = "lobby/entry"
	LabelConference = "conference/meeting"
	LabelHallway    = "hallway/break"
	LabelCafeteria  = "cafeteria"
	LabelOvernight  = "security/overnight"
	LabelOffice     = "office"
)

// dwell intervals longer than this are treated as the user having left
// without badging, not as time spent in the room.
const maxDwellMinutes = 240.0

// Detector buckets each room into a usage category from swipe
// frequency, time-of-day distribution, and distinct-user count. These
// are behavioral signals, not confirmed intrusions, so severities stay
// low — except off-hours anomalies, the strongest behavioral precursor
// to insider misuse.
type Detector struct {
	logger zerolog.Logger
	cfg    *core.AnalysisConfig
}

func New(cfg *core.AnalysisConfig, logger zerolog.Logger) *Detector {
	return &Detector{
		logger: logger.With().Str("detector", DetectorName).Logger(),
		cfg:    cfg,
	}
}

func (d *Detector) Name() string { return DetectorName }
func (d *Detector) Describe() string {
	return "Room usage classification from swipe frequency, time-of-day distribution, and dwell time"
}

// Detect classifies every room and emits one finding per non-normal
// classification. Classification is deterministic: identical stores
// yield identical findings in identical order.
func (d *Detector) Detect(events *store.EventStore, _ *store.UserDirectory) []core.Finding {
	var findings []core.Finding
	for _, summary := range Classify(d.cfg, events) {
		if summary.Classification == ClassNormal {
			continue
		}

		severity := core.SeverityLow
		if summary.Classification == ClassOffHoursAnomaly {
			severity = core.SeverityMedium
		}

		f := core.NewFinding(core.KindRoomUsagePattern, summary.Room, severity,
			fmt.Sprintf("room %s classified %s: %d swipes, %d distinct users, %d off-hours, inferred %s",
				summary.Room, summary.Classification, summary.Swipes,
				summary.DistinctUsers, summary.OffHoursSwipes, summary.Label))
		f.Detector = DetectorName
		f.Evidence = []core.Evidence{{
			Tag: summary.Classification,
			Metrics: map[string]float64{
				"swipes":            float64(summary.Swipes),
				"distinct_users":    float64(summary.DistinctUsers),
				"off_hours_swipes":  float64(summary.OffHoursSwipes),
				"median_dwell_mins": summary.MedianDwellMins,
			},
		}}
		findings = append(findings, f)
	}

	d.logger.Debug().Int("findings", len(findings)).Msg("room usage scan complete")
	return findings
}

type roomStats struct {
	swipes   int
	users    map[string]bool
	offHours int
	hours    [24]int
	dwells   []float64
}

// Classify computes the per-room usage profile for every room in the
// store, sorted by room ID.
func Classify(cfg *core.AnalysisConfig, events *store.EventStore) []core.RoomSummary {
	rooms := events.Rooms()
	stats := make(map[string]*roomStats, len(rooms))
	for _, room := range rooms {
		stats[room] = &roomStats{users: make(map[string]bool)}
	}

	for _, e := range events.All() {
		s := stats[e.Room]
		s.swipes++
		s.users[e.UserID] = true
		s.hours[e.Timestamp.Hour()]++
		if !cfg.InBusinessHours(e.Timestamp) {
			s.offHours++
		}
	}

	// Dwell time: the gap between a user's consecutive swipes is spent
	// in the room of the earlier swipe, clamped to [0, maxDwell].
	for _, userID := range events.Users() {
		seq := events.ForUser(userID)
		for i := 1; i < len(seq); i++ {
			mins := seq[i].Timestamp.Sub(seq[i-1].Timestamp).Minutes()
			if mins < 0 {
				mins = 0
			}
			if mins > maxDwellMinutes {
				mins = maxDwellMinutes
			}
			stats[seq[i-1].Room].dwells = append(stats[seq[i-1].Room].dwells, mins)
		}
	}

	counts := make([]int, 0, len(rooms))
	for _, room := range rooms {
		counts = append(counts, stats[room].swipes)
	}
	highCut := percentile(counts, cfg.HighTrafficPercentile)
	lowCut := percentile(counts, cfg.LowTrafficPercentile)

	summaries := make([]core.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		s := stats[room]
		median := median(s.dwells)
		summaries = append(summaries, core.RoomSummary{
			Room:            room,
			Swipes:          s.swipes,
			DistinctUsers:   len(s.users),
			OffHoursSwipes:  s.offHours,
			MedianDwellMins: median,
			Label:           inferLabel(s, median),
			Classification:  classify(cfg, s, highCut, lowCut),
		})
	}
	return summaries
}

// classify applies the bucket rules in precedence order.
func classify(cfg *core.AnalysisConfig, s *roomStats, highCut, lowCut int) string {
	if s.swipes > 0 {
		fraction := float64(s.offHours) / float64(s.swipes)
		if fraction > cfg.OffHoursFraction {
			return ClassOffHoursAnomaly
		}
	}
	if s.swipes > highCut {
		return ClassHighTraffic
	}
	if s.swipes < lowCut {
		return ClassLowTraffic
	}
	return ClassNormal
}

// inferLabel estimates the probable room type from dwell time and the
// hour-of-day histogram.
func inferLabel(s *roomStats, medianDwell float64) string {
	morning := s.hours[7] + s.hours[8] + s.hours[9]
	lunch := s.hours[11] + s.hours[12] + s.hours[13]
	evening := s.hours[16] + s.hours[17] + s.hours[18] + s.hours[19]
	night := s.hours[0] + s.hours[1] + s.hours[2] + s.hours[3] + s.hours[4] +
		s.hours[5] + s.hours[21] + s.hours[22] + s.hours[23]

	label := LabelOffice
	if morning > lunch && medianDwell < 15 {
		label = LabelLobby
	}
	if medianDwell >= 25 && medianDwell <= 150 && lunch > morning && lunch > evening {
		label = LabelConference
	}
	if medianDwell < 10 && morning+lunch+evening > 50 && night == 0 {
		label = LabelHallway
	}
	if medianDwell >= 40 && medianDwell <= 90 && lunch > morning+evening && lunch > 20 {
		label = LabelCafeteria
	}
	if night > morning+lunch+evening && medianDwell >= 60 {
		label = LabelOvernight
	}
	return label
}

// percentile returns the swipe count at the given fraction of the
// sorted distribution (nearest lower rank, no interpolation).
func percentile(counts []int, p float64) int {
	if len(counts) == 0 {
		return 0
	}
	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
