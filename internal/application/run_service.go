package application

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/briamv/qacli/internal/domain"
	"github.com/briamv/qacli/internal/domain/plan"
	"github.com/briamv/qacli/internal/domain/report"
)

// RunArgs are the inputs of one quality-gate run.
type RunArgs struct {
	ProjectPath string
	Mode        string
	Scope       string
	Dimension   string
	Fast        bool
}

// RunOutcome is what a run produced. Environment is set as soon as the
// environment check ran, even when the run was aborted afterwards.
type RunOutcome struct {
	Report      domain.AggregatedReport
	Environment domain.EnvironmentReport
}

// RunService orchestrates the pipeline:
// select plan -> check environment -> resolve targets -> execute -> aggregate.
type RunService struct {
	cfg      domain.ProjectConfig
	scanner  domain.ProjectScanner
	git      domain.GitInfo
	env      *EnvironmentService
	executor *Executor
	logger   domain.Logger

	newID func() string
}

func NewRunService(
	cfg domain.ProjectConfig,
	scanner domain.ProjectScanner,
	git domain.GitInfo,
	env *EnvironmentService,
	executor *Executor,
	logger domain.Logger,
) *RunService {
	return &RunService{
		cfg:      cfg,
		scanner:  scanner,
		git:      git,
		env:      env,
		executor: executor,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Config returns the project configuration the service was built with.
func (s *RunService) Config() domain.ProjectConfig { return s.cfg }

// Plan selects the execution plan for args without running anything.
func (s *RunService) Plan(args RunArgs) (domain.ExecutionPlan, error) {
	return plan.Select(plan.Args{
		Mode:         args.Mode,
		Scope:        args.Scope,
		Dimension:    args.Dimension,
		Fast:         args.Fast,
		ChangedFiles: s.changedFiles(args.ProjectPath),
	}, s.cfg)
}

// Doctor checks the environment for the tools args would run.
func (s *RunService) Doctor(ctx context.Context, args RunArgs) (domain.ExecutionPlan, domain.EnvironmentReport, error) {
	p, err := s.Plan(args)
	if err != nil {
		return domain.ExecutionPlan{}, domain.EnvironmentReport{}, err
	}
	return p, s.env.Check(ctx, args.ProjectPath, p.Mode, p.RequiredTools), nil
}

// Run executes the full pipeline. A failing gate is not an error: it is
// reported through the report's summary. Errors are configuration problems
// or unavailable critical tools.
func (s *RunService) Run(ctx context.Context, args RunArgs) (RunOutcome, error) {
	start := time.Now()

	workDir, err := filepath.Abs(args.ProjectPath)
	if err != nil {
		return RunOutcome{}, fmt.Errorf("resolving project path: %w", err)
	}
	args.ProjectPath = workDir

	p, err := s.Plan(args)
	if err != nil {
		return RunOutcome{}, err
	}
	s.logger.Debug("plan selected", "mode", p.Mode, "scope", p.Scope, "dimensions", p.Dimensions, "tools", p.RequiredTools)

	env := s.env.Check(ctx, workDir, p.Mode, p.RequiredTools)
	out := RunOutcome{Environment: env}

	critical, optional := Unavailable(p, env, s.cfg)
	if len(critical) > 0 {
		return out, criticalError(critical, env, s.cfg)
	}

	skip := make(map[domain.ToolName]string, len(optional))
	for _, tool := range optional {
		reason := UnavailableReason(tool, env, s.cfg)
		skip[tool] = reason
		s.logger.Warn("skipping optional tool", "tool", tool, "reason", reason)
	}

	targets, err := s.resolveTargets(workDir, p, skip)
	if err != nil {
		return out, err
	}

	results, skipped := s.executor.Run(ctx, ExecutionInput{
		Plan:    p,
		WorkDir: workDir,
		Targets: targets,
		Probes:  env.Tools,
		Skip:    skip,
	})

	rep := report.Aggregate(results, skipped, time.Since(start))
	rep.RunID = s.newID()
	rep.Plan = &p
	rep.Git = s.gitContext(workDir)
	out.Report = rep
	return out, nil
}

// resolveTargets lists the files each file-level tool should check. In
// fast mode only the plan's changed files are considered.
func (s *RunService) resolveTargets(workDir string, p domain.ExecutionPlan, skip map[domain.ToolName]string) (map[domain.ToolName][]string, error) {
	targets := map[domain.ToolName][]string{}
	for _, step := range p.Steps {
		if _, skipped := skip[step.Tool]; skipped {
			continue
		}
		desc, _ := s.cfg.Descriptor(step.Tool)
		if desc.ProjectLevel {
			continue
		}

		var roots []string
		for _, sc := range step.Scopes {
			roots = append(roots, s.cfg.ScopePaths(sc)...)
		}

		var files []string
		if p.Mode == domain.ModeFast {
			files = plan.FilterTargets(p.Files, roots, desc.Extensions)
		} else {
			scanned, err := s.scanner.Scan(workDir, roots, desc.Extensions)
			if err != nil {
				return nil, fmt.Errorf("scanning targets for %s: %w", step.Tool, err)
			}
			files = scanned
		}
		targets[step.Tool] = mergeUnique(targets[step.Tool], files)
	}
	return targets, nil
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		seen[f] = true
	}
	for _, f := range b {
		if !seen[f] {
			seen[f] = true
			a = append(a, f)
		}
	}
	return a
}

func (s *RunService) changedFiles(projectPath string) []string {
	if s.git == nil {
		return nil
	}
	files, err := s.git.ChangedFiles(projectPath)
	if err != nil {
		s.logger.Debug("changed files unavailable", "error", err)
		return nil
	}
	return files
}

func (s *RunService) gitContext(projectPath string) *domain.GitContext {
	if s.git == nil {
		return nil
	}
	ctx, err := s.git.Context(projectPath)
	if err != nil {
		s.logger.Debug("git context unavailable", "error", err)
		return nil
	}
	return ctx
}
