package wrappers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

func jestSpec() toolSpec {
	return toolSpec{
		args: func(domain.ExecOptions) []string {
			return []string{"--json", "--ci", "--passWithNoTests", "--silent"}
		},
		parse: parseJest,
	}
}

type jestReport struct {
	TestResults []struct {
		Name             string `json:"name"`
		Status           string `json:"status"`
		Message          string `json:"message"`
		AssertionResults []struct {
			FullName        string   `json:"fullName"`
			Status          string   `json:"status"`
			FailureMessages []string `json:"failureMessages"`
			Location        *struct {
				Line   int `json:"line"`
				Column int `json:"column"`
			} `json:"location"`
		} `json:"assertionResults"`
	} `json:"testResults"`
}

// parseJest turns each failed assertion into an error. A failed suite with
// no failed assertions (a compile or import error) is one error for the file.
func parseJest(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, fmt.Errorf("no JSON document in output")
	}
	var rep jestReport
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("decoding jest json: %w", err)
	}

	var vs []domain.Violation
	for _, suite := range rep.TestResults {
		file := relPath(workDir, suite.Name)
		failed := 0
		for _, a := range suite.AssertionResults {
			if a.Status != "failed" {
				continue
			}
			failed++
			v := domain.Violation{
				File: file, Severity: domain.SeverityError,
				Message: a.FullName, RuleID: "test-failure",
			}
			if len(a.FailureMessages) > 0 {
				v.Message += ": " + firstLine(a.FailureMessages[0])
			}
			if a.Location != nil {
				v.Line, v.Column = a.Location.Line, a.Location.Column
			}
			vs = append(vs, v)
		}
		if suite.Status == "failed" && failed == 0 {
			vs = append(vs, domain.Violation{
				File: file, Severity: domain.SeverityError,
				Message: firstLine(suite.Message), RuleID: "suite-failure",
			})
		}
	}
	return vs, nil
}

func pytestSpec() toolSpec {
	return toolSpec{
		args: func(domain.ExecOptions) []string {
			return []string{"-q", "-rfE", "--color=no", "-p", "no:cacheprovider"}
		},
		parse: parsePytest,
		// 5: no tests were collected.
		quietExits: []int{5},
	}
}

var (
	pytestSummary = regexp.MustCompile(`(?m)^=*\s*.*\b(passed|failed|errors?|skipped|deselected|xfailed|xpassed|warnings?|no tests ran)\b.* in \d+(?:\.\d+)?s\b`)
	pytestOutcome = regexp.MustCompile(`^(FAILED|ERROR) (\S+)(?: - (.*))?$`)
	ansiEscape    = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// parsePytest reads the short test summary (-rfE). The final summary line
// must be present, otherwise the run is treated as unparseable.
func parsePytest(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	text := string(out.Stdout)
	if !pytestSummary.MatchString(text) {
		return nil, fmt.Errorf("no pytest summary line")
	}

	var vs []domain.Violation
	for _, line := range strings.Split(text, "\n") {
		m := pytestOutcome.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		node := m[2]
		file, _, _ := strings.Cut(node, "::")
		msg := m[3]
		if msg == "" {
			msg = strings.ToLower(m[1])
		}
		rule := "test-failure"
		if m[1] == "ERROR" {
			rule = "test-error"
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, file), Severity: domain.SeverityError,
			Message: node + ": " + msg, RuleID: rule,
		})
	}
	return vs, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(ansiEscape.ReplaceAllString(s, ""))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
