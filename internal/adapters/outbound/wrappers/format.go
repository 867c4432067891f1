package wrappers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

var (
	prettierWarn  = regexp.MustCompile(`^\[warn\] (.+)$`)
	prettierError = regexp.MustCompile(`^\[error\] (.+?): (.+?)(?: \((\d+):(\d+)\))?$`)
	positioned    = regexp.MustCompile(`^(.+?):(\d+):(\d+): (.+)$`)
)

func prettierSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"--check"} },
		parse: parsePrettier,
	}
}

// parsePrettier reads "[warn] <file>" lines for unformatted files and
// "[error] <file>: SyntaxError: ... (l:c)" lines for files it could not parse.
func parsePrettier(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	var vs []domain.Violation
	for _, line := range outputLines(out) {
		line = strings.TrimSpace(line)
		if m := prettierWarn.FindStringSubmatch(line); m != nil {
			if strings.HasPrefix(m[1], "Code style issues") {
				continue
			}
			vs = append(vs, domain.Violation{
				File:     relPath(workDir, m[1]),
				Severity: domain.SeverityError,
				Message:  "file is not formatted",
				RuleID:   "prettier/format",
			})
			continue
		}
		// Code frame lines ("[error]   3 | x") follow the error they belong to.
		if m := prettierError.FindStringSubmatch(line); m != nil && !strings.ContainsAny(m[1], "|>") && !strings.HasPrefix(m[1], " ") {
			// "[error] No files matching the pattern were found: ..." is
			// prettier failing, not a file it could not parse.
			if !strings.ContainsAny(m[1], "./") {
				return nil, fmt.Errorf("prettier: %s", strings.TrimPrefix(line, "[error] "))
			}
			vs = append(vs, domain.Violation{
				File:     relPath(workDir, m[1]),
				Line:     atoi(m[3]),
				Column:   atoi(m[4]),
				Severity: domain.SeverityError,
				Message:  m[2],
				RuleID:   "prettier/syntax",
			})
		}
	}
	return vs, nil
}

func blackSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"--check", "--no-color"} },
		parse: parseBlack,
	}
}

// parseBlack reads "would reformat <file>" and "error: cannot format <file>: <reason>".
func parseBlack(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	var vs []domain.Violation
	for _, line := range outputLines(out) {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "would reformat "):
			vs = append(vs, domain.Violation{
				File:     relPath(workDir, strings.TrimPrefix(line, "would reformat ")),
				Severity: domain.SeverityError,
				Message:  "file would be reformatted",
				RuleID:   "black/format",
			})
		case strings.HasPrefix(line, "error: cannot format "):
			rest := strings.TrimPrefix(line, "error: cannot format ")
			file, reason, _ := strings.Cut(rest, ": ")
			vs = append(vs, domain.Violation{
				File:     relPath(workDir, file),
				Severity: domain.SeverityError,
				Message:  reason,
				RuleID:   "black/parse",
			})
		}
	}
	return vs, nil
}

func shfmtSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"-l"} },
		parse: parseShfmt,
	}
}

// parseShfmt reads the list of unformatted files from stdout and
// "<file>:<l>:<c>: <msg>" syntax errors from stderr.
func parseShfmt(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	var vs []domain.Violation
	for _, line := range strings.Split(string(out.Stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		vs = append(vs, domain.Violation{
			File:     relPath(workDir, line),
			Severity: domain.SeverityError,
			Message:  "file is not formatted",
			RuleID:   "shfmt/format",
		})
	}
	for _, line := range strings.Split(string(out.Stderr), "\n") {
		if m := positioned.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			vs = append(vs, domain.Violation{
				File:     relPath(workDir, m[1]),
				Line:     atoi(m[2]),
				Column:   atoi(m[3]),
				Severity: domain.SeverityError,
				Message:  m[4],
				RuleID:   "shfmt/syntax",
			})
		}
	}
	return vs, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
