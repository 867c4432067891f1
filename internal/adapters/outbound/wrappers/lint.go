package wrappers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

func eslintSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"-f", "json", "--no-color"} },
		parse: parseESLint,
	}
}

type eslintFile struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		RuleID   *string `json:"ruleId"`
		Severity int     `json:"severity"`
		Message  string  `json:"message"`
		Line     int     `json:"line"`
		Column   int     `json:"column"`
		Fatal    bool    `json:"fatal"`
	} `json:"messages"`
}

// parseESLint decodes the json formatter: severity 2 is an error, 1 a warning.
func parseESLint(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}
	var files []eslintFile
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, fmt.Errorf("decoding eslint json: %w", err)
	}

	var vs []domain.Violation
	for _, f := range files {
		for _, m := range f.Messages {
			sev := domain.SeverityWarning
			if m.Severity >= 2 || m.Fatal {
				sev = domain.SeverityError
			}
			rule := ""
			if m.RuleID != nil {
				rule = *m.RuleID
			}
			vs = append(vs, domain.Violation{
				File: relPath(workDir, f.FilePath), Line: m.Line, Column: m.Column,
				Severity: sev, Message: m.Message, RuleID: rule,
			})
		}
	}
	return vs, nil
}

func ruffSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"check", "--no-fix", "--output-format", "json"} },
		parse: parseRuff,
	}
}

type ruffDiagnostic struct {
	Code     *string `json:"code"`
	Message  string  `json:"message"`
	Filename string  `json:"filename"`
	Location struct {
		Row    int `json:"row"`
		Column int `json:"column"`
	} `json:"location"`
}

// parseRuff decodes ruff's json output. pycodestyle warnings (W*) are
// warnings; every other code, and syntax errors without a code, are errors.
func parseRuff(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}
	var diags []ruffDiagnostic
	if err := json.Unmarshal(body, &diags); err != nil {
		return nil, fmt.Errorf("decoding ruff json: %w", err)
	}

	vs := make([]domain.Violation, 0, len(diags))
	for _, d := range diags {
		code := "syntax-error"
		if d.Code != nil && *d.Code != "" {
			code = *d.Code
		}
		sev := domain.SeverityError
		if strings.HasPrefix(code, "W") {
			sev = domain.SeverityWarning
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, d.Filename), Line: d.Location.Row, Column: d.Location.Column,
			Severity: sev, Message: d.Message, RuleID: code,
		})
	}
	return vs, nil
}

func pylintSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"--output-format=json", "--score=n"} },
		parse: parsePylint,
	}
}

type pylintMessage struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Symbol    string `json:"symbol"`
	Message   string `json:"message"`
	MessageID string `json:"message-id"`
}

// parsePylint maps fatal and error messages to errors, warnings to
// warnings and convention, refactor and info messages to info.
func parsePylint(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}
	var msgs []pylintMessage
	if err := json.Unmarshal(body, &msgs); err != nil {
		return nil, fmt.Errorf("decoding pylint json: %w", err)
	}

	vs := make([]domain.Violation, 0, len(msgs))
	for _, m := range msgs {
		var sev domain.Severity
		switch m.Type {
		case "fatal", "error":
			sev = domain.SeverityError
		case "warning":
			sev = domain.SeverityWarning
		default:
			sev = domain.SeverityInfo
		}
		rule := m.Symbol
		if rule == "" {
			rule = m.MessageID
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, m.Path), Line: m.Line, Column: m.Column,
			Severity: sev, Message: m.Message, RuleID: rule,
		})
	}
	return vs, nil
}

func shellcheckSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"-f", "json"} },
		parse: parseShellcheck,
	}
}

type shellcheckComment struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Level   string `json:"level"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func parseShellcheck(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}
	var comments []shellcheckComment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, fmt.Errorf("decoding shellcheck json: %w", err)
	}

	vs := make([]domain.Violation, 0, len(comments))
	for _, c := range comments {
		var sev domain.Severity
		switch c.Level {
		case "error":
			sev = domain.SeverityError
		case "warning":
			sev = domain.SeverityWarning
		default:
			sev = domain.SeverityInfo
		}
		vs = append(vs, domain.Violation{
			File: relPath(workDir, c.File), Line: c.Line, Column: c.Column,
			Severity: sev, Message: c.Message, RuleID: fmt.Sprintf("SC%d", c.Code),
		})
	}
	return vs, nil
}

// errNoJSON is returned by parsers of tools that always print a JSON
// document, even an empty one, when they ran.
var errNoJSON = errors.New("no JSON document in output")
