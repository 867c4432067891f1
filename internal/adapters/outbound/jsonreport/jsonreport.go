// Package jsonreport writes machine-readable run output.
package jsonreport

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/briamv/qacli/internal/domain"
)

// WriteReport writes r as 2-space indented JSON followed by a newline.
func WriteReport(w io.Writer, r domain.AggregatedReport) error {
	return Write(w, r)
}

// Write encodes any report-like value (plans, environment reports, tool
// listings) the same way as WriteReport.
func Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return nil
}
