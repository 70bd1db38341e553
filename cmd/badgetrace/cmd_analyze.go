package main

// ---------------------------------------------------------------------------
// cmd_analyze.go — run one batch analysis and emit the findings report
// ---------------------------------------------------------------------------

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/badgetrace-project/badgetrace/internal/analysis"
	"github.com/badgetrace-project/badgetrace/internal/core"
	"github.com/badgetrace-project/badgetrace/internal/ingest"
	"github.com/badgetrace-project/badgetrace/internal/store"
)

func cmdAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "configs/default.yaml", "Config file path")
	eventsPath := fs.String("events", "", "JSONL badge event log (required)")
	profilesPath := fs.String("profiles", "", "User directory JSON file (required)")
	format := fs.String("format", "table", "Output format: table, json")
	outPath := fs.String("out", "", "Write the JSON report to a file as well")
	lenient := fs.Bool("skip-invalid", false, "Skip malformed records instead of failing")
	fs.Parse(args)

	if *eventsPath == "" || *profilesPath == "" {
		errorf("analyze requires -events and -profiles")
	}

	cfg := loadConfig(*configPath)
	if *lenient {
		cfg.Analysis.SkipInvalid = true
	}
	logger := analysis.NewLogger(cfg, os.Stderr)

	ingested, err := ingest.ReadEventsFile(*eventsPath, cfg.Analysis.SkipInvalid, logger)
	if err != nil {
		errorf("reading events: %v", err)
	}

	profiles, err := ingest.ReadProfilesFile(*profilesPath)
	if err != nil {
		errorf("reading profiles: %v", err)
	}

	events, err := store.NewEventStore(ingested.Events, store.Options{SkipInvalid: cfg.Analysis.SkipInvalid})
	if err != nil {
		errorf("loading event store: %v", err)
	}

	users, err := store.NewUserDirectory(profiles)
	if err != nil {
		errorf("loading user directory: %v", err)
	}

	engine := analysis.NewEngine(cfg, logger)
	report := engine.Run(events, users)
	report.Summary.SkippedRecords += ingested.Skipped

	if *outPath != "" {
		data, err := report.Marshal()
		if err != nil {
			errorf("marshaling report: %v", err)
		}
		if err := os.WriteFile(*outPath, data, 0644); err != nil {
			errorf("writing report: %v", err)
		}
	}

	switch parseFormat(*format) {
	case FormatJSON:
		data, err := report.Marshal()
		if err != nil {
			errorf("marshaling report: %v", err)
		}
		fmt.Println(string(data))
	default:
		renderReportTable(os.Stdout, report)
	}

	// Non-zero exit when any high-severity finding is present, so the
	// command composes with scripts and CI gates.
	for _, f := range report.Findings {
		if f.Severity == core.SeverityHigh {
			os.Exit(2)
		}
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
