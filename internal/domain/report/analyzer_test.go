package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briamv/qacli/internal/domain"
	"github.com/briamv/qacli/internal/domain/report"
)

func TestAnalyze_GroupsByDimensionToolFile(t *testing.T) {
	r := domain.AggregatedReport{Details: []domain.ToolResult{
		{Tool: domain.ToolESLint, Dimension: domain.DimensionLint, Violations: []domain.Violation{
			{File: "src/b.ts", Line: 9, Severity: domain.SeverityError, RuleID: "no-undef"},
			{File: "src/a.ts", Line: 4, Severity: domain.SeverityWarning, RuleID: "semi"},
			{File: "src/a.ts", Line: 2, Severity: domain.SeverityError, RuleID: "no-undef"},
		}},
		{Tool: domain.ToolPrettier, Dimension: domain.DimensionFormat, Success: true},
	}}

	a := report.Analyze(r, 0)

	require.Len(t, a.Dimensions, 2)
	assert.Equal(t, domain.DimensionFormat, a.Dimensions[0].Dimension)
	assert.Equal(t, domain.DimensionLint, a.Dimensions[1].Dimension)

	eslint := a.Dimensions[1].Tools[0]
	assert.Equal(t, 2, eslint.Errors)
	assert.Equal(t, 1, eslint.Warnings)
	require.Len(t, eslint.Files, 2)
	assert.Equal(t, "src/a.ts", eslint.Files[0].File)
	assert.Equal(t, 2, eslint.Files[0].Entries[0].Line)
	assert.Equal(t, 4, eslint.Files[0].Entries[1].Line)
	assert.Equal(t, 1, eslint.Files[0].Errors)
	assert.Equal(t, 1, eslint.Files[0].Warnings)
}

func TestAnalyze_CollapsesRepeatedRule(t *testing.T) {
	var vs []domain.Violation
	for _, line := range []int{30, 10, 20} {
		vs = append(vs, domain.Violation{File: "a.py", Line: line, Severity: domain.SeverityWarning, Message: "line too long", RuleID: "E501"})
	}
	vs = append(vs, domain.Violation{File: "a.py", Line: 5, Severity: domain.SeverityError, Message: "undefined", RuleID: "F821"})
	r := domain.AggregatedReport{Details: []domain.ToolResult{{Tool: domain.ToolRuff, Dimension: domain.DimensionLint, Violations: vs}}}

	entries := report.Analyze(r, 3).Dimensions[0].Tools[0].Files[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "F821", entries[0].RuleID)
	assert.Equal(t, 1, entries[0].Occurrences)
	assert.Equal(t, "E501", entries[1].RuleID)
	assert.Equal(t, 3, entries[1].Occurrences)
	assert.Equal(t, []int{10, 20, 30}, entries[1].Lines)

	// Below the threshold every violation stays its own entry.
	entries = report.Analyze(r, 4).Dimensions[0].Tools[0].Files[0].Entries
	assert.Len(t, entries, 4)
}

func TestAnalyze_TopRules(t *testing.T) {
	var vs []domain.Violation
	for i := 0; i < 3; i++ {
		vs = append(vs, domain.Violation{File: "a.ts", Line: i + 1, Severity: domain.SeverityWarning, RuleID: "noUnusedVars"})
	}
	vs = append(vs, domain.Violation{File: "a.ts", Line: 9, Severity: domain.SeverityError, RuleID: "TS2322"})
	vs = append(vs, domain.Violation{File: "a.ts", Line: 10, Severity: domain.SeverityError})
	r := domain.AggregatedReport{Details: []domain.ToolResult{{Tool: domain.ToolTSC, Dimension: domain.DimensionBuild, Violations: vs}}}

	top := report.Analyze(r, 0).TopRules
	require.Len(t, top, 2)
	assert.Equal(t, report.RuleCount{RuleID: "noUnusedVars", Label: "no unused vars", Tool: domain.ToolTSC, Count: 3}, top[0])
	assert.Equal(t, "TS2322", top[1].Label)
}

func TestRuleLabel(t *testing.T) {
	tests := map[string]string{
		"@typescript-eslint/no-unused-vars": "no unused vars",
		"noUnusedVars":                      "no unused vars",
		"line-too-long":                     "line too long",
		"unused_import":                     "unused import",
		"E501":                              "E501",
		"SC2086":                            "SC2086",
		"LT01/layout.spacing":               "layout spacing",
		"":                                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, report.RuleLabel(in), in)
	}
}
