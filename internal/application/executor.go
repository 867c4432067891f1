package application

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/briamv/qacli/internal/domain"
)

// ExecutionInput is everything one execution needs besides the wrappers.
type ExecutionInput struct {
	Plan    domain.ExecutionPlan
	WorkDir string

	// Targets are the files per file-level tool. Project-level tools ignore them.
	Targets map[domain.ToolName][]string
	Probes  map[domain.ToolName]domain.ToolProbeResult

	// Skip maps tools that must not run to the reason recorded in the report.
	Skip map[domain.ToolName]string
}

// Executor runs the plan's steps through their wrappers.
type Executor struct {
	wrappers domain.WrapperProvider
	cfg      domain.ProjectConfig
	logger   domain.Logger
}

func NewExecutor(wrappers domain.WrapperProvider, cfg domain.ProjectConfig, logger domain.Logger) *Executor {
	return &Executor{wrappers: wrappers, cfg: cfg, logger: logger}
}

// Run executes dimensions in plan order, or concurrently when
// parallel_dimensions is set. Within a dimension, tools sharing an
// exclusive group run one after another and groups run concurrently up to
// the configured job limit. Result order always follows the plan.
func (e *Executor) Run(ctx context.Context, in ExecutionInput) ([]domain.ToolResult, []domain.SkippedTool) {
	dims := in.Plan.Dimensions
	results := make([][]domain.ToolResult, len(dims))
	skipped := make([][]domain.SkippedTool, len(dims))

	if e.cfg.ParallelDimensions && e.cfg.ParallelEnabled() {
		var wg sync.WaitGroup
		for i, dim := range dims {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], skipped[i] = e.runDimension(ctx, dim, in)
			}()
		}
		wg.Wait()
	} else {
		for i, dim := range dims {
			results[i], skipped[i] = e.runDimension(ctx, dim, in)
		}
	}

	var allResults []domain.ToolResult
	var allSkipped []domain.SkippedTool
	for i := range dims {
		allResults = append(allResults, results[i]...)
		allSkipped = append(allSkipped, skipped[i]...)
	}
	return allResults, allSkipped
}

func (e *Executor) runDimension(ctx context.Context, dim domain.Dimension, in ExecutionInput) ([]domain.ToolResult, []domain.SkippedTool) {
	var (
		runnable []domain.Step
		skipped  []domain.SkippedTool
	)
	for _, step := range in.Plan.StepsFor(dim) {
		if reason, ok := in.Skip[step.Tool]; ok {
			skipped = append(skipped, domain.SkippedTool{Tool: step.Tool, Dimension: dim, Reason: reason})
			continue
		}
		desc, _ := e.cfg.Descriptor(step.Tool)
		if !desc.ProjectLevel && len(in.Targets[step.Tool]) == 0 {
			skipped = append(skipped, domain.SkippedTool{Tool: step.Tool, Dimension: dim, Reason: "no matching files"})
			continue
		}
		runnable = append(runnable, step)
	}

	slots := make([]domain.ToolResult, len(runnable))
	var g errgroup.Group
	g.SetLimit(e.jobs())
	for _, group := range exclusiveGroups(runnable, e.cfg) {
		g.Go(func() error {
			for _, idx := range group {
				slots[idx] = e.runStep(ctx, runnable[idx], in)
			}
			return nil
		})
	}
	_ = g.Wait()

	return slots, skipped
}

func (e *Executor) jobs() int {
	if !e.cfg.ParallelEnabled() {
		return 1
	}
	if e.cfg.Jobs > 0 {
		return e.cfg.Jobs
	}
	return domain.DefaultJobs
}

// exclusiveGroups partitions step indexes by exclusive group, keeping the
// order of first appearance. Steps without a group form their own group.
func exclusiveGroups(steps []domain.Step, cfg domain.ProjectConfig) [][]int {
	var groups [][]int
	byName := map[string]int{}
	for i, step := range steps {
		desc, _ := cfg.Descriptor(step.Tool)
		if desc.ExclusiveGroup == "" {
			groups = append(groups, []int{i})
			continue
		}
		if g, ok := byName[desc.ExclusiveGroup]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		byName[desc.ExclusiveGroup] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}

// runStep executes one tool. Panics and lookup errors become a failed
// result for this tool only.
func (e *Executor) runStep(ctx context.Context, step domain.Step, in ExecutionInput) (res domain.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failedResult(step, fmt.Sprintf("wrapper panicked: %v", r))
		}
		e.logger.Info("tool finished",
			"tool", step.Tool,
			"dimension", step.Dimension,
			"success", res.Success,
			"violations", len(res.Violations),
			"duration_ms", res.ExecutionTimeMs,
		)
	}()

	if err := ctx.Err(); err != nil {
		return failedResult(step, "cancelled before start: "+err.Error())
	}

	w, err := e.wrappers.Get(step.Tool)
	if err != nil {
		return failedResult(step, err.Error())
	}

	probe := in.Probes[step.Tool]
	res = w.Execute(ctx, in.Targets[step.Tool], domain.ExecOptions{
		WorkDir:    in.WorkDir,
		Timeout:    e.cfg.TimeoutFor(step.Tool),
		ExtraArgs:  e.cfg.ArgsFor(step.Tool),
		Dimension:  step.Dimension,
		Invocation: probe.Invocation,
		Version:    probe.Version,
	})
	res.Tool = step.Tool
	res.Dimension = step.Dimension
	return res
}

func failedResult(step domain.Step, msg string) domain.ToolResult {
	return domain.ToolResult{
		Tool:       step.Tool,
		Dimension:  step.Dimension,
		Success:    false,
		Violations: []domain.Violation{},
		Metadata:   domain.ResultMetadata{Crashed: true, Error: msg},
	}
}
