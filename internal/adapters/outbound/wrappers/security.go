package wrappers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

func snykSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"test", "--json"} },
		parse: parseSnyk,
		// 3: no supported project manifests found.
		quietExits: []int{3},
	}
}

type snykProject struct {
	OK                bool   `json:"ok"`
	Error             string `json:"error"`
	DisplayTargetFile string `json:"displayTargetFile"`
	TargetFile        string `json:"targetFile"`
	Vulnerabilities   []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Severity    string `json:"severity"`
		PackageName string `json:"packageName"`
		Version     string `json:"version"`
	} `json:"vulnerabilities"`
}

// parseSnyk handles both the single-project object and the array produced
// for --all-projects. Critical and high findings are errors.
func parseSnyk(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}

	var projects []snykProject
	if body[0] == '[' {
		if err := json.Unmarshal(body, &projects); err != nil {
			return nil, fmt.Errorf("decoding snyk json: %w", err)
		}
	} else {
		var p snykProject
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decoding snyk json: %w", err)
		}
		projects = []snykProject{p}
	}

	var vs []domain.Violation
	for _, p := range projects {
		if p.Error != "" && len(p.Vulnerabilities) == 0 {
			if out.ExitCode == 3 {
				continue
			}
			return nil, fmt.Errorf("snyk: %s", firstLine(p.Error))
		}
		file := p.DisplayTargetFile
		if file == "" {
			file = p.TargetFile
		}
		seen := map[string]bool{}
		for _, v := range p.Vulnerabilities {
			// The same advisory is listed once per dependency path.
			key := v.ID + "\x00" + v.PackageName + "\x00" + v.Version
			if seen[key] {
				continue
			}
			seen[key] = true

			var sev domain.Severity
			switch strings.ToLower(v.Severity) {
			case "critical", "high":
				sev = domain.SeverityError
			case "medium":
				sev = domain.SeverityWarning
			default:
				sev = domain.SeverityInfo
			}
			vs = append(vs, domain.Violation{
				File: relPath(workDir, file), Severity: sev,
				Message: fmt.Sprintf("%s@%s: %s", v.PackageName, v.Version, v.Title),
				RuleID:  v.ID,
			})
		}
	}
	return vs, nil
}

func semgrepSpec() toolSpec {
	return toolSpec{
		args: func(opts domain.ExecOptions) []string {
			args := []string{"scan", "--json", "--quiet", "--disable-version-check"}
			for _, a := range opts.ExtraArgs {
				if a == "--config" || strings.HasPrefix(a, "--config=") || a == "-c" {
					return args
				}
			}
			return append(args, "--config", "auto")
		},
		parse: parseSemgrep,
	}
}

type semgrepReport struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
			Col  int `json:"col"`
		} `json:"start"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
		} `json:"extra"`
	} `json:"results"`
	Errors []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Path    string `json:"path"`
	} `json:"errors"`
}

func parseSemgrep(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}
	var rep semgrepReport
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("decoding semgrep json: %w", err)
	}

	vs := make([]domain.Violation, 0, len(rep.Results))
	for _, r := range rep.Results {
		var sev domain.Severity
		switch strings.ToUpper(r.Extra.Severity) {
		case "ERROR", "HIGH", "CRITICAL":
			sev = domain.SeverityError
		case "WARNING", "MEDIUM":
			sev = domain.SeverityWarning
		default:
			sev = domain.SeverityInfo
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, r.Path), Line: r.Start.Line, Column: r.Start.Col,
			Severity: sev, Message: strings.TrimSpace(r.Extra.Message), RuleID: r.CheckID,
		})
	}
	for _, e := range rep.Errors {
		if strings.ToLower(e.Level) != "error" {
			continue
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, e.Path), Severity: domain.SeverityError,
			Message: firstLine(e.Message), RuleID: "semgrep-error",
		})
	}
	return vs, nil
}

func banditSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"-f", "json", "-q"} },
		parse: parseBandit,
	}
}

type banditReport struct {
	Results []struct {
		Filename      string `json:"filename"`
		LineNumber    int    `json:"line_number"`
		ColOffset     int    `json:"col_offset"`
		IssueSeverity string `json:"issue_severity"`
		IssueText     string `json:"issue_text"`
		TestID        string `json:"test_id"`
	} `json:"results"`
	Errors []struct {
		Filename string `json:"filename"`
		Reason   string `json:"reason"`
	} `json:"errors"`
}

// parseBandit maps HIGH to error, MEDIUM to warning and LOW to info. Files
// bandit could not parse are errors.
func parseBandit(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}
	var rep banditReport
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("decoding bandit json: %w", err)
	}

	vs := make([]domain.Violation, 0, len(rep.Results)+len(rep.Errors))
	for _, r := range rep.Results {
		var sev domain.Severity
		switch strings.ToUpper(r.IssueSeverity) {
		case "HIGH":
			sev = domain.SeverityError
		case "MEDIUM":
			sev = domain.SeverityWarning
		default:
			sev = domain.SeverityInfo
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, r.Filename), Line: r.LineNumber, Column: r.ColOffset + 1,
			Severity: sev, Message: r.IssueText, RuleID: r.TestID,
		})
	}
	for _, e := range rep.Errors {
		vs = append(vs, domain.Violation{
			File: relPath(workDir, e.Filename), Severity: domain.SeverityError,
			Message: e.Reason, RuleID: "bandit-error",
		})
	}
	return vs, nil
}
