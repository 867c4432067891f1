package wrappers

import (
	"regexp"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

var (
	tscDiagnostic = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): (error|warning|message) (TS\d+): (.*)$`)
	tscGlobal     = regexp.MustCompile(`^(error|warning) (TS\d+): (.*)$`)
	mypyLine      = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?: (error|warning|note): (.*?)(?:\s+\[([\w-]+)\])?$`)
)

func tscSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"--noEmit", "--pretty", "false"} },
		parse: parseTSC,
	}
}

// parseTSC reads "file(l,c): error TSxxxx: msg" diagnostics plus global
// "error TSxxxx: msg" lines that carry no location.
func parseTSC(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	var vs []domain.Violation
	for _, line := range outputLines(out) {
		line = strings.TrimRight(line, " \t")
		if m := tscDiagnostic.FindStringSubmatch(line); m != nil {
			vs = append(vs, domain.Violation{
				File: relPath(workDir, m[1]), Line: atoi(m[2]), Column: atoi(m[3]),
				Severity: tscSeverity(m[4]), Message: m[6], RuleID: m[5],
			})
			continue
		}
		if m := tscGlobal.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			vs = append(vs, domain.Violation{
				Severity: tscSeverity(m[1]), Message: m[3], RuleID: m[2],
			})
		}
	}
	return vs, nil
}

func tscSeverity(s string) domain.Severity {
	switch s {
	case "error":
		return domain.SeverityError
	case "warning":
		return domain.SeverityWarning
	}
	return domain.SeverityInfo
}

func mypySpec() toolSpec {
	return toolSpec{
		args: func(domain.ExecOptions) []string {
			return []string{"--show-column-numbers", "--show-error-codes", "--no-error-summary", "--no-color-output", "--no-pretty"}
		},
		parse: parseMypy,
	}
}

// parseMypy reads "file:l[:c]: error|note: msg  [code]" lines. Notes are info.
func parseMypy(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	var vs []domain.Violation
	for _, line := range strings.Split(string(out.Stdout), "\n") {
		m := mypyLine.FindStringSubmatch(strings.TrimRight(line, " \r"))
		if m == nil {
			continue
		}
		sev := domain.SeverityInfo
		switch m[4] {
		case "error":
			sev = domain.SeverityError
		case "warning":
			sev = domain.SeverityWarning
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, m[1]), Line: atoi(m[2]), Column: atoi(m[3]),
			Severity: sev, Message: m[5], RuleID: m[6],
		})
	}
	return vs, nil
}
