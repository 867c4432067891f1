package wrappers

import (
	"errors"
	"fmt"

	"github.com/briamv/qacli/internal/domain"
)

// Category describes what kind of check a tool performs.
type Category string

const (
	CategoryFormatter   Category = "formatter"
	CategoryLinter      Category = "linter"
	CategoryTestRunner  Category = "test-runner"
	CategoryTypeChecker Category = "type-checker"
	CategoryScanner     Category = "scanner"
)

var constructors = map[domain.ToolName]func() toolSpec{
	domain.ToolPrettier:   prettierSpec,
	domain.ToolBlack:      blackSpec,
	domain.ToolShfmt:      shfmtSpec,
	domain.ToolESLint:     eslintSpec,
	domain.ToolRuff:       ruffSpec,
	domain.ToolPylint:     pylintSpec,
	domain.ToolShellcheck: shellcheckSpec,
	domain.ToolJest:       jestSpec,
	domain.ToolPytest:     pytestSpec,
	domain.ToolTSC:        tscSpec,
	domain.ToolMypy:       mypySpec,
	domain.ToolSnyk:       snykSpec,
	domain.ToolSemgrep:    semgrepSpec,
	domain.ToolBandit:     banditSpec,
	domain.ToolSQLFluff:   sqlfluffSpec,
}

var categories = map[domain.ToolName]Category{
	domain.ToolPrettier:   CategoryFormatter,
	domain.ToolBlack:      CategoryFormatter,
	domain.ToolShfmt:      CategoryFormatter,
	domain.ToolESLint:     CategoryLinter,
	domain.ToolRuff:       CategoryLinter,
	domain.ToolPylint:     CategoryLinter,
	domain.ToolShellcheck: CategoryLinter,
	domain.ToolSQLFluff:   CategoryLinter,
	domain.ToolJest:       CategoryTestRunner,
	domain.ToolPytest:     CategoryTestRunner,
	domain.ToolTSC:        CategoryTypeChecker,
	domain.ToolMypy:       CategoryTypeChecker,
	domain.ToolSnyk:       CategoryScanner,
	domain.ToolSemgrep:    CategoryScanner,
	domain.ToolBandit:     CategoryScanner,
}

// CategoryOf returns the tool's category, or "" for unknown tools.
func CategoryOf(tool domain.ToolName) Category {
	return categories[tool]
}

// ValidateRegistry checks that the dimension tables, the descriptor catalog
// and the wrapper registrations agree. It runs at startup.
func ValidateRegistry() error {
	var errs []error
	for _, tool := range domain.MappedTools() {
		if _, ok := domain.Descriptors[tool]; !ok {
			errs = append(errs, fmt.Errorf("tool %q is mapped to a dimension but has no descriptor", tool))
		}
	}
	for _, tool := range domain.AllTools() {
		if _, ok := constructors[tool]; !ok {
			errs = append(errs, fmt.Errorf("tool %q has no wrapper constructor", tool))
		}
		if _, ok := categories[tool]; !ok {
			errs = append(errs, fmt.Errorf("tool %q has no category", tool))
		}
		if len(domain.DimensionsFor(tool)) == 0 {
			errs = append(errs, fmt.Errorf("tool %q is not mapped to any dimension", tool))
		}
	}
	for tool := range constructors {
		if _, ok := domain.Descriptors[tool]; !ok {
			errs = append(errs, fmt.Errorf("wrapper %q has no descriptor", tool))
		}
	}
	return errors.Join(errs...)
}
