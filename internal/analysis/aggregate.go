package analysis

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/badgetrace-project/badgetrace/internal/core"
)

// Aggregate merges detector outputs into a single report: findings
// sorted by severity descending, then kind, then subject, plus summary
// counts per kind and per severity. It produces no new findings; input
// order never affects the output.
func Aggregate(findings []core.Finding) *core.Report {
	sorted := make([]core.Finding, len(findings))
	copy(sorted, findings)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Description < b.Description
	})

	summary := core.ReportSummary{
		ByKind:     make(map[string]int),
		BySeverity: make(map[string]int),
	}
	for _, f := range sorted {
		summary.ByKind[string(f.Kind)]++
		summary.BySeverity[f.Severity.String()]++
	}

	return &core.Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Findings:    sorted,
		Summary:     summary,
	}
}
