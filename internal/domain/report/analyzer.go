package report

import (
	"sort"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"

	"github.com/briamv/qacli/internal/domain"
)

// Analysis is the hierarchical view of a report: dimension → tool → file → line.
type Analysis struct {
	Dimensions []DimensionGroup `json:"dimensions"`
	TopRules   []RuleCount      `json:"top_rules,omitempty"`
}

type DimensionGroup struct {
	Dimension domain.Dimension `json:"dimension"`
	Tools     []ToolGroup      `json:"tools"`
}

type ToolGroup struct {
	Tool       domain.ToolName `json:"tool"`
	Success    bool            `json:"success"`
	DurationMs int64           `json:"duration_ms"`
	Error      string          `json:"error,omitempty"`
	Files      []FileGroup     `json:"files,omitempty"`
	Errors     int             `json:"errors"`
	Warnings   int             `json:"warnings"`
	Infos      int             `json:"infos"`
}

type FileGroup struct {
	File     string  `json:"file"`
	Entries  []Entry `json:"entries"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
}

// Entry is a single violation, or a collapsed run of the same rule in one
// file when Occurrences > 1.
type Entry struct {
	Line        int             `json:"line,omitempty"`
	Column      int             `json:"column,omitempty"`
	Severity    domain.Severity `json:"severity"`
	Message     string          `json:"message"`
	RuleID      string          `json:"rule_id,omitempty"`
	Occurrences int             `json:"occurrences"`
	Lines       []int           `json:"lines,omitempty"`
}

type RuleCount struct {
	RuleID string          `json:"rule_id"`
	Label  string          `json:"label"`
	Tool   domain.ToolName `json:"tool"`
	Count  int             `json:"count"`
}

const topRuleLimit = 5

// Analyze groups the report's violations. Repetitions of one rule within a
// file collapse into a single entry once they reach threshold; a threshold
// below 2 disables collapsing.
func Analyze(r domain.AggregatedReport, threshold int) Analysis {
	var a Analysis
	dimIndex := map[domain.Dimension]int{}

	for _, dim := range orderedDimensions(r.Details) {
		dimIndex[dim] = len(a.Dimensions)
		a.Dimensions = append(a.Dimensions, DimensionGroup{Dimension: dim})
	}

	rules := map[string]*RuleCount{}
	for _, res := range r.Details {
		g := ToolGroup{
			Tool:       res.Tool,
			Success:    res.Success,
			DurationMs: res.ExecutionTimeMs,
			Error:      res.Metadata.Error,
			Errors:     res.CountSeverity(domain.SeverityError),
			Warnings:   res.CountSeverity(domain.SeverityWarning),
			Infos:      res.CountSeverity(domain.SeverityInfo),
			Files:      groupFiles(res.Violations, threshold),
		}
		i := dimIndex[res.Dimension]
		a.Dimensions[i].Tools = append(a.Dimensions[i].Tools, g)

		for _, v := range res.Violations {
			if v.RuleID == "" {
				continue
			}
			key := string(res.Tool) + "\x00" + v.RuleID
			rc, ok := rules[key]
			if !ok {
				rc = &RuleCount{RuleID: v.RuleID, Label: RuleLabel(v.RuleID), Tool: res.Tool}
				rules[key] = rc
			}
			rc.Count++
		}
	}

	a.TopRules = topRules(rules, topRuleLimit)
	return a
}

// orderedDimensions returns the dimensions present in results in canonical order.
func orderedDimensions(results []domain.ToolResult) []domain.Dimension {
	present := map[domain.Dimension]bool{}
	for _, res := range results {
		present[res.Dimension] = true
	}
	var out []domain.Dimension
	for _, d := range domain.AllDimensions {
		if present[d] {
			out = append(out, d)
			delete(present, d)
		}
	}
	// Dimensions outside the canonical list keep a stable order too.
	var rest []string
	for d := range present {
		rest = append(rest, string(d))
	}
	sort.Strings(rest)
	for _, d := range rest {
		out = append(out, domain.Dimension(d))
	}
	return out
}

func groupFiles(violations []domain.Violation, threshold int) []FileGroup {
	byFile := map[string][]domain.Violation{}
	var names []string
	for _, v := range violations {
		if _, ok := byFile[v.File]; !ok {
			names = append(names, v.File)
		}
		byFile[v.File] = append(byFile[v.File], v)
	}
	sort.Strings(names)

	groups := make([]FileGroup, 0, len(names))
	for _, name := range names {
		vs := byFile[name]
		sort.SliceStable(vs, func(i, j int) bool {
			if vs[i].Line != vs[j].Line {
				return vs[i].Line < vs[j].Line
			}
			return vs[i].Column < vs[j].Column
		})

		fg := FileGroup{File: name, Entries: collapse(vs, threshold)}
		for _, v := range vs {
			switch v.Severity {
			case domain.SeverityError:
				fg.Errors++
			case domain.SeverityWarning:
				fg.Warnings++
			}
		}
		groups = append(groups, fg)
	}
	return groups
}

// collapse merges same-rule violations of one file into occurrence entries.
// vs must be sorted by position.
func collapse(vs []domain.Violation, threshold int) []Entry {
	key := func(v domain.Violation) string {
		if v.RuleID != "" {
			return string(v.Severity) + "\x00" + v.RuleID
		}
		return string(v.Severity) + "\x00" + v.Message
	}

	counts := map[string]int{}
	for _, v := range vs {
		counts[key(v)]++
	}

	var entries []Entry
	merged := map[string]int{}
	for _, v := range vs {
		k := key(v)
		if threshold >= 2 && counts[k] >= threshold {
			if i, ok := merged[k]; ok {
				entries[i].Occurrences++
				entries[i].Lines = append(entries[i].Lines, v.Line)
				continue
			}
			merged[k] = len(entries)
			entries = append(entries, Entry{
				Line: v.Line, Column: v.Column, Severity: v.Severity,
				Message: v.Message, RuleID: v.RuleID,
				Occurrences: 1, Lines: []int{v.Line},
			})
			continue
		}
		entries = append(entries, Entry{
			Line: v.Line, Column: v.Column, Severity: v.Severity,
			Message: v.Message, RuleID: v.RuleID, Occurrences: 1,
		})
	}
	return entries
}

func topRules(rules map[string]*RuleCount, limit int) []RuleCount {
	out := make([]RuleCount, 0, len(rules))
	for _, rc := range rules {
		out = append(out, *rc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Tool != out[j].Tool {
			return out[i].Tool < out[j].Tool
		}
		return out[i].RuleID < out[j].RuleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RuleLabel turns a rule identifier into words: "@typescript-eslint/no-unused-vars"
// and "noUnusedVars" both become "no unused vars". Code-style identifiers
// such as E501 or TS2322 are returned unchanged.
func RuleLabel(rule string) string {
	name := rule
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || strings.IndexFunc(name, unicode.IsDigit) >= 0 {
		return rule
	}

	var words []string
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	}) {
		for _, w := range camelcase.Split(part) {
			words = append(words, strings.ToLower(w))
		}
	}
	if len(words) == 0 {
		return rule
	}
	return strings.Join(words, " ")
}
