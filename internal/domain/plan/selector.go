// Package plan turns CLI arguments into an immutable ExecutionPlan.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/briamv/qacli/internal/domain"
)

// Args are the parsed CLI flags relevant to plan selection.
type Args struct {
	Mode      string
	Scope     string
	Dimension string
	Fast      bool

	// ChangedFiles are repository-relative paths with uncommitted changes.
	// Used by fast mode to narrow targets and by automatic mode to infer scope.
	ChangedFiles []string
}

// Select builds the plan. It is a pure function of args and cfg.
func Select(args Args, cfg domain.ProjectConfig) (domain.ExecutionPlan, error) {
	mode, err := resolveMode(args)
	if err != nil {
		return domain.ExecutionPlan{}, err
	}

	scope, scopeSet, err := parseScope(args.Scope)
	if err != nil {
		return domain.ExecutionPlan{}, err
	}

	dim, dimSet, err := parseDimension(args.Dimension)
	if err != nil {
		return domain.ExecutionPlan{}, err
	}

	switch mode {
	case domain.ModeScope:
		if !scopeSet {
			return domain.ExecutionPlan{}, domain.NewError(domain.ErrCodeMissingFlag,
				"--mode=scope requires --scope").
				WithFlag("--scope").
				WithSuggestions("pass --scope=frontend, --scope=backend, --scope=infra or --scope=all")
		}
	case domain.ModeDimension:
		if !dimSet {
			return domain.ExecutionPlan{}, domain.NewError(domain.ErrCodeMissingFlag,
				"--mode=dimension requires --dimension").
				WithFlag("--dimension").
				WithSuggestions("pass one of --dimension=" + joinDimensions())
		}
	}

	if !scopeSet {
		scope = domain.ScopeAll
		if mode == domain.ModeAutomatic {
			scope = InferScope(args.ChangedFiles, cfg)
		}
	}

	dims := dimensionsFor(mode)
	if dimSet {
		// An explicit dimension is never widened, whatever the mode.
		dims = []domain.Dimension{dim}
	}

	p := domain.ExecutionPlan{Mode: mode, Scope: scope}
	for _, d := range dims {
		steps := stepsFor(d, scope, cfg)
		if len(steps) == 0 {
			continue
		}
		p.Dimensions = append(p.Dimensions, d)
		p.Steps = append(p.Steps, steps...)
	}

	if len(p.Steps) == 0 {
		msg, flag := fmt.Sprintf("no tools are mapped for scope %q", scope), "--scope"
		if dimSet {
			msg, flag = fmt.Sprintf("no tools are mapped for dimension %q in scope %q", dim, scope), "--dimension"
		}
		return domain.ExecutionPlan{}, domain.NewError(domain.ErrCodeEmptyPlan, msg).
			WithFlag(flag).
			WithSuggestions("run 'qa tools' to list which tools serve each dimension and scope")
	}

	seen := map[domain.ToolName]bool{}
	for _, s := range p.Steps {
		if !seen[s.Tool] {
			seen[s.Tool] = true
			p.RequiredTools = append(p.RequiredTools, s.Tool)
		}
	}

	if mode == domain.ModeFast {
		p.Files = filesInScope(args.ChangedFiles, scope, cfg)
	}

	return p, nil
}

func resolveMode(args Args) (domain.Mode, error) {
	if args.Mode == "" {
		switch {
		case args.Fast:
			return domain.ModeFast, nil
		case args.Dimension != "":
			return domain.ModeDimension, nil
		case args.Scope != "":
			return domain.ModeScope, nil
		default:
			return domain.ModeAutomatic, nil
		}
	}

	mode := domain.Mode(strings.ToLower(args.Mode))
	valid := false
	for _, m := range domain.ValidModes {
		if m == mode {
			valid = true
			break
		}
	}
	if !valid {
		names := make([]string, len(domain.ValidModes))
		for i, m := range domain.ValidModes {
			names[i] = string(m)
		}
		return "", invalidValue("--mode", args.Mode, names)
	}
	if args.Fast && mode != domain.ModeFast {
		return "", domain.NewError(domain.ErrCodeInvalidFlag,
			fmt.Sprintf("--fast conflicts with --mode=%s", mode)).
			WithFlag("--fast").
			WithSuggestions("drop --fast or use --mode=fast")
	}
	return mode, nil
}

func parseScope(raw string) (domain.Scope, bool, error) {
	if raw == "" {
		return "", false, nil
	}
	s := domain.Scope(strings.ToLower(raw))
	switch s {
	case domain.ScopeFrontend, domain.ScopeBackend, domain.ScopeInfra, domain.ScopeAll:
		return s, true, nil
	}
	return "", false, invalidValue("--scope", raw, []string{"frontend", "backend", "infra", "all"})
}

func parseDimension(raw string) (domain.Dimension, bool, error) {
	if raw == "" {
		return "", false, nil
	}
	d := domain.Dimension(strings.ToLower(raw))
	for _, known := range domain.AllDimensions {
		if d == known {
			return d, true, nil
		}
	}
	names := make([]string, len(domain.AllDimensions))
	for i, x := range domain.AllDimensions {
		names[i] = string(x)
	}
	return "", false, invalidValue("--dimension", raw, names)
}

func dimensionsFor(mode domain.Mode) []domain.Dimension {
	if mode == domain.ModeFast {
		return []domain.Dimension{domain.DimensionFormat, domain.DimensionLint}
	}
	return domain.AllDimensions
}

// stepsFor produces one step per tool, listing every scope the tool serves
// within the dimension.
func stepsFor(dim domain.Dimension, scope domain.Scope, cfg domain.ProjectConfig) []domain.Step {
	var steps []domain.Step
	index := map[domain.ToolName]int{}
	for _, s := range scope.Expand() {
		for _, tool := range domain.DimensionTools[dim][s] {
			if cfg.IsDisabled(tool) {
				continue
			}
			if i, ok := index[tool]; ok {
				steps[i].Scopes = append(steps[i].Scopes, s)
				continue
			}
			index[tool] = len(steps)
			steps = append(steps, domain.Step{Dimension: dim, Tool: tool, Scopes: []domain.Scope{s}})
		}
	}
	return steps
}

// InferScope maps changed files onto configured scope directories. A single
// matching scope narrows the run; anything else means the whole repository.
func InferScope(files []string, cfg domain.ProjectConfig) domain.Scope {
	hit := map[domain.Scope]bool{}
	for _, f := range files {
		for _, s := range domain.ConcreteScopes {
			if underAny(f, cfg.Scopes[s].Paths) {
				hit[s] = true
			}
		}
	}
	if len(hit) != 1 {
		return domain.ScopeAll
	}
	for s := range hit {
		return s
	}
	return domain.ScopeAll
}

func filesInScope(files []string, scope domain.Scope, cfg domain.ProjectConfig) []string {
	paths := cfg.ScopePaths(scope)
	var out []string
	for _, f := range files {
		if underAny(f, paths) {
			out = append(out, f)
		}
	}
	return out
}

func underAny(file string, roots []string) bool {
	f := filepath.ToSlash(filepath.Clean(file))
	for _, r := range roots {
		r = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(r)), "/")
		if f == r || strings.HasPrefix(f, r+"/") {
			return true
		}
	}
	return false
}

func joinDimensions() string {
	names := make([]string, len(domain.AllDimensions))
	for i, d := range domain.AllDimensions {
		names[i] = string(d)
	}
	return strings.Join(names, "|")
}
