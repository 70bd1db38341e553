package analysis

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/detect/curious"
	"github.com/badgetrace-project/badgetrace/internal/detect/roomusage"
	"github.com/badgetrace-project/badgetrace/internal/detect/traveler"
	"github.com/badgetrace-project/badgetrace/internal/store"
)

// Detector is the interface all badge-log detectors implement. A
// detector is a pure function of the event store, the user directory,
// and the analysis configuration it was constructed with; it never
// mutates its inputs.
type Detector interface {
	// Name returns the unique name of the detector.
	Name() string
	// Describe returns a human-readable description.
	Describe() string
	// Detect scans the batch and returns its findings.
	Detect(events *store.EventStore, users *store.UserDirectory) []core.Finding
}

// Engine runs the registered detectors over one closed batch and merges
// their outputs into a report.
type Engine struct {
	cfg       *core.Config
	logger    zerolog.Logger
	detectors []Detector
	byName    map[string]Detector
}

// NewEngine creates an engine with the standard detector set registered
// in a fixed order.
func NewEngine(cfg *core.Config, logger zerolog.Logger) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "analysis_engine").Logger(),
		byName: make(map[string]Detector),
	}

	// Registration failures are impossible here: the standard set has
	// distinct names.
	_ = e.Register(traveler.New(&cfg.Analysis, logger))
	_ = e.Register(curious.New(&cfg.Analysis, logger))
	_ = e.Register(roomusage.New(&cfg.Analysis, logger))

	return e
}

// Register adds a detector to the engine.
func (e *Engine) Register(d Detector) error {
	name := d.Name()
	if _, exists := e.byName[name]; exists {
		return fmt.Errorf("detector %q already registered", name)
	}
	e.byName[name] = d
	e.detectors = append(e.detectors, d)
	e.logger.Debug().Str("detector", name).Msg("detector registered")
	return nil
}

// Detectors returns all registered detectors in registration order.
func (e *Engine) Detectors() []Detector {
	return e.detectors
}

// Run executes every detector concurrently over the immutable store and
// directory, fans the findings into the aggregator, and returns the
// report. Detectors share no mutable state, so no locking is needed
// beyond the fan-in channel.
func (e *Engine) Run(events *store.EventStore, users *store.UserDirectory) *core.Report {
	results := make(chan []core.Finding, len(e.detectors))

	var wg sync.WaitGroup
	for _, d := range e.detectors {
		wg.Add(1)
		go func(d Detector) {
			defer wg.Done()
			findings := d.Detect(events, users)
			e.logger.Info().
				Str("detector", d.Name()).
				Int("findings", len(findings)).
				Msg("detector finished")
			results <- findings
		}(d)
	}
	wg.Wait()
	close(results)

	var all []core.Finding
	for batch := range results {
		all = append(all, batch...)
	}

	report := Aggregate(all)
	report.Rooms = roomusage.Classify(&e.cfg.Analysis, events)
	report.Summary.TotalEvents = events.Len()
	report.Summary.TotalUsers = users.Count()
	report.Summary.TotalRooms = len(events.Rooms())
	report.Summary.SkippedRecords = events.Skipped()

	e.logger.Info().
		Str("run_id", report.RunID).
		Int("findings", len(report.Findings)).
		Msg("analysis run complete")
	return report
}
