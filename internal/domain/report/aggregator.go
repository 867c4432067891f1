// Package report folds tool results into run-level summaries and prepares
// them for rendering.
package report

import (
	"time"

	"github.com/briamv/qacli/internal/domain"
)

// Aggregate folds per-tool results into one report. Each result lands in
// exactly one of the passed/failed buckets; warnings are only counted for
// results that passed.
func Aggregate(results []domain.ToolResult, skipped []domain.SkippedTool, duration time.Duration) domain.AggregatedReport {
	r := domain.AggregatedReport{
		Details:         results,
		Skipped:         skipped,
		TotalDurationMs: duration.Milliseconds(),
	}
	if r.Details == nil {
		r.Details = []domain.ToolResult{}
	}

	for _, res := range results {
		r.Summary.Errors += res.CountSeverity(domain.SeverityError)
		if res.Success {
			r.Summary.Passed++
			r.Summary.Warnings += res.CountSeverity(domain.SeverityWarning)
			continue
		}
		r.Summary.Failed++
	}
	return r
}

// ExitCode is 0 if and only if no tool failed.
func ExitCode(r domain.AggregatedReport) int {
	if r.Summary.Failed == 0 {
		return 0
	}
	return 1
}
