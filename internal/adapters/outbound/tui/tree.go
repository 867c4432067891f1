package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/briamv/qacli/internal/domain"
	"github.com/briamv/qacli/internal/domain/report"
)

// entriesPerFile caps the violations listed per file outside verbose mode.
const entriesPerFile = 5

// RenderReport renders the run as a dimension → tool → file → line tree
// followed by skipped tools, top rules and the summary line.
func RenderReport(r domain.AggregatedReport, opts Options) string {
	width := opts.width()
	a := report.Analyze(r, opts.GroupThreshold)

	var b strings.Builder
	renderHeader(&b, r, width)

	for _, dim := range a.Dimensions {
		b.WriteString("\n")
		b.WriteString(dimNameStyle.Render(string(dim.Dimension)) + "\n")
		for i, tool := range dim.Tools {
			last := i == len(dim.Tools)-1
			renderTool(&b, tool, branch(last), indent(last), width, opts.Verbose)
		}
	}

	if len(r.Skipped) > 0 {
		b.WriteString("\n")
		b.WriteString(skipStyle.Render("skipped") + "\n")
		for i, s := range r.Skipped {
			line := fmt.Sprintf("%s%s %s", branch(i == len(r.Skipped)-1), skipStyle.Render("○"), s.Tool)
			if s.Dimension != "" {
				line += skipStyle.Render(" (" + string(s.Dimension) + ")")
			}
			line += "  " + dimStyle.Render(truncate(s.Reason, width-lineWidth(line)-2))
			b.WriteString(line + "\n")
		}
	}

	if len(a.TopRules) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Top rules") + "\n")
		for _, rc := range a.TopRules {
			label := rc.Label
			if label != rc.RuleID {
				label += dimStyle.Render(" (" + rc.RuleID + ")")
			}
			fmt.Fprintf(&b, "  %s  %s  %s\n",
				padRight(strconv.Itoa(rc.Count), 4),
				padRight(string(rc.Tool), 10),
				label)
		}
	}

	b.WriteString("\n")
	b.WriteString(separator(width) + "\n")
	b.WriteString(RenderSummary(r) + "\n")
	return clamp(b.String(), width)
}

// clamp cuts every line of s to width cells without breaking styling.
func clamp(s string, width int) string {
	cut := lipgloss.NewStyle().MaxWidth(width)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if lipgloss.Width(l) > width {
			lines[i] = cut.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

func renderHeader(b *strings.Builder, r domain.AggregatedReport, width int) {
	title := headerStyle.Render("qa")
	var meta []string
	if r.Plan != nil {
		meta = append(meta, "mode "+string(r.Plan.Mode), "scope "+string(r.Plan.Scope))
	}
	if r.Git != nil && r.Git.Branch != "" {
		ref := r.Git.Branch
		if len(r.Git.CommitHash) >= 7 {
			ref += "@" + r.Git.CommitHash[:7]
		}
		meta = append(meta, ref)
	}
	if r.RunID != "" {
		id := r.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		meta = append(meta, "run "+id)
	}
	body := title
	if len(meta) > 0 {
		// border and padding take six cells, the title four more
		body += "  " + dimStyle.Render(truncate(strings.Join(meta, " · "), width-10))
	}
	b.WriteString(boxStyle.Render(body) + "\n")
}

func renderTool(b *strings.Builder, t report.ToolGroup, lead, childIndent string, width int, verbose bool) {
	line := fmt.Sprintf("%s%s %s", lead, statusIcon(t.Success), titleStyle.Render(string(t.Tool)))
	var counts []string
	if t.Errors > 0 {
		counts = append(counts, errorTagStyle.Render(plural(t.Errors, "error")))
	}
	if t.Warnings > 0 {
		counts = append(counts, warnTagStyle.Render(plural(t.Warnings, "warning")))
	}
	if t.Infos > 0 {
		counts = append(counts, infoTagStyle.Render(fmt.Sprintf("%d info", t.Infos)))
	}
	if len(counts) > 0 {
		line += "  " + strings.Join(counts, " ")
	}
	line += "  " + dimStyle.Render(formatDuration(t.DurationMs))
	b.WriteString(line + "\n")

	if t.Error != "" {
		prefix := childIndent + "└── "
		if len(t.Files) > 0 {
			prefix = childIndent + "├── "
		}
		b.WriteString(prefix + failStyle.Render(truncate(t.Error, width-lineWidth(prefix))) + "\n")
	}

	for i, f := range t.Files {
		last := i == len(t.Files)-1
		b.WriteString(childIndent + branch(last) + fileStyle.Render(f.File) + "\n")
		renderEntries(b, f, childIndent+indent(last), width, verbose)
	}
}

func renderEntries(b *strings.Builder, f report.FileGroup, prefix string, width int, verbose bool) {
	entries := f.Entries
	hidden := 0
	if !verbose && len(entries) > entriesPerFile {
		hidden = len(entries) - entriesPerFile
		entries = entries[:entriesPerFile]
	}

	for i, e := range entries {
		last := i == len(entries)-1 && hidden == 0
		pos := ""
		if e.Line > 0 {
			pos = strconv.Itoa(e.Line)
			if e.Column > 0 {
				pos += ":" + strconv.Itoa(e.Column)
			}
		}
		head := prefix + branch(last) + padRight(pos, 8) + severityTag(e.Severity) + "  "

		msg := e.Message
		if e.Occurrences > 1 {
			msg = fmt.Sprintf("%s (%d occurrences)", msg, e.Occurrences)
		}
		tail := ""
		if e.RuleID != "" {
			tail = "  " + e.RuleID
		}
		avail := width - lineWidth(head)
		if lineWidth(msg+tail) > avail {
			tail = ""
		}
		b.WriteString(head + truncate(msg, avail) + dimStyle.Render(tail) + "\n")
	}
	if hidden > 0 {
		b.WriteString(prefix + "└── " + dimStyle.Render(fmt.Sprintf("… %d more (use --verbose)", hidden)) + "\n")
	}
}

// RenderSummary is the one-line verdict printed after every run.
func RenderSummary(r domain.AggregatedReport) string {
	s := r.Summary
	verdict := passStyle.Bold(true).Render("PASS")
	if !r.Passed() {
		verdict = failStyle.Bold(true).Render("FAIL")
	}
	parts := []string{
		fmt.Sprintf("%d passed", s.Passed),
		fmt.Sprintf("%d failed", s.Failed),
		plural(s.Errors, "error"),
		plural(s.Warnings, "warning"),
	}
	if len(r.Skipped) > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", len(r.Skipped)))
	}
	parts = append(parts, formatDuration(r.TotalDurationMs))
	return verdict + "  " + dimStyle.Render(strings.Join(parts, " · "))
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func lineWidth(s string) int {
	return lipgloss.Width(s)
}
