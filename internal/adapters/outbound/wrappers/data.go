package wrappers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

func sqlfluffSpec() toolSpec {
	return toolSpec{
		args:  func(domain.ExecOptions) []string { return []string{"lint", "--format", "json", "--disable-progress-bar"} },
		parse: parseSQLFluff,
	}
}

type sqlfluffFile struct {
	Filepath   string `json:"filepath"`
	Violations []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Name        string `json:"name"`

		// 2.x and later use start_*; 1.x used line_no/line_pos.
		StartLineNo  int `json:"start_line_no"`
		StartLinePos int `json:"start_line_pos"`
		LineNo       int `json:"line_no"`
		LinePos      int `json:"line_pos"`
	} `json:"violations"`
}

// parseSQLFluff reports style rules as warnings. Parse failures (PRS) and
// templating failures (TMP) are errors.
func parseSQLFluff(out domain.ProcessResult, workDir string) ([]domain.Violation, error) {
	body := jsonBody(out.Stdout)
	if body == nil {
		return nil, errNoJSON
	}
	var files []sqlfluffFile
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, fmt.Errorf("decoding sqlfluff json: %w", err)
	}

	var vs []domain.Violation
	for _, f := range files {
		for _, v := range f.Violations {
			line, col := v.StartLineNo, v.StartLinePos
			if line == 0 {
				line, col = v.LineNo, v.LinePos
			}
			sev := domain.SeverityWarning
			if strings.HasPrefix(v.Code, "PRS") || strings.HasPrefix(v.Code, "TMP") {
				sev = domain.SeverityError
			}
			rule := v.Code
			if v.Name != "" {
				rule = v.Code + "/" + v.Name
			}
			vs = append(vs, domain.Violation{
				File: relPath(workDir, f.Filepath), Line: line, Column: col,
				Severity: sev, Message: v.Description, RuleID: rule,
			})
		}
	}
	return vs, nil
}
