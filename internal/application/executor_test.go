package application_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briamv/qacli/internal/application"
	"github.com/briamv/qacli/internal/domain"
	"github.com/briamv/qacli/internal/domain/report"
)

func lintPlan(tools ...domain.ToolName) domain.ExecutionPlan {
	p := domain.ExecutionPlan{Mode: domain.ModeDimension, Scope: domain.ScopeAll, Dimensions: []domain.Dimension{domain.DimensionLint}}
	for _, tool := range tools {
		p.Steps = append(p.Steps, domain.Step{Dimension: domain.DimensionLint, Tool: tool})
		p.RequiredTools = append(p.RequiredTools, tool)
	}
	return p
}

func targetsFor(tools ...domain.ToolName) map[domain.ToolName][]string {
	out := map[domain.ToolName][]string{}
	for _, tool := range tools {
		out[tool] = []string{"file"}
	}
	return out
}

func TestExecutor_CrashIsolation(t *testing.T) {
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolESLint:     {name: domain.ToolESLint, result: passing()},
		domain.ToolRuff:       {name: domain.ToolRuff, panics: true},
		domain.ToolShellcheck: {name: domain.ToolShellcheck, result: passing()},
	}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	tools := []domain.ToolName{domain.ToolESLint, domain.ToolRuff, domain.ToolShellcheck}
	results, skipped := exec.Run(context.Background(), application.ExecutionInput{
		Plan:    lintPlan(tools...),
		Targets: targetsFor(tools...),
	})

	require.Len(t, results, 3)
	assert.Empty(t, skipped)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Metadata.Error, "panicked")
	assert.True(t, results[2].Success)

	// Scenario E: one crash, two passes.
	rep := report.Aggregate(results, skipped, time.Second)
	assert.Equal(t, 2, rep.Summary.Passed)
	assert.Equal(t, 1, rep.Summary.Failed)
	assert.Equal(t, 1, report.ExitCode(rep))
}

func TestExecutor_ResultsFollowPlanOrder(t *testing.T) {
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolESLint:     {name: domain.ToolESLint, result: passing(), delay: 30 * time.Millisecond},
		domain.ToolRuff:       {name: domain.ToolRuff, result: passing()},
		domain.ToolShellcheck: {name: domain.ToolShellcheck, result: passing(), delay: 10 * time.Millisecond},
	}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	tools := []domain.ToolName{domain.ToolESLint, domain.ToolRuff, domain.ToolShellcheck}
	for i := 0; i < 3; i++ {
		results, _ := exec.Run(context.Background(), application.ExecutionInput{
			Plan:    lintPlan(tools...),
			Targets: targetsFor(tools...),
		})
		require.Len(t, results, 3)
		for j, tool := range tools {
			assert.Equal(t, tool, results[j].Tool)
			assert.Equal(t, domain.DimensionLint, results[j].Dimension)
		}
	}
}

func TestExecutor_ExclusiveGroupRunsSequentially(t *testing.T) {
	var running, peak int32
	track := func(domain.ToolName) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}

	// pylint, pytest and mypy share the venv group.
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolPylint: {name: domain.ToolPylint, result: passing(), onRun: track},
		domain.ToolPytest: {name: domain.ToolPytest, result: passing(), onRun: track},
		domain.ToolMypy:   {name: domain.ToolMypy, result: passing(), onRun: track},
	}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	tools := []domain.ToolName{domain.ToolPylint, domain.ToolPytest, domain.ToolMypy}
	results, _ := exec.Run(context.Background(), application.ExecutionInput{
		Plan:    lintPlan(tools...),
		Targets: targetsFor(tools...),
	})

	require.Len(t, results, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestExecutor_IndependentToolsRunConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	barrier := func(domain.ToolName) {
		wg.Done()
		wg.Wait()
	}

	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolESLint: {name: domain.ToolESLint, result: passing(), onRun: barrier},
		domain.ToolRuff:   {name: domain.ToolRuff, result: passing(), onRun: barrier},
	}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	done := make(chan struct{})
	go func() {
		exec.Run(context.Background(), application.ExecutionInput{
			Plan:    lintPlan(domain.ToolESLint, domain.ToolRuff),
			Targets: targetsFor(domain.ToolESLint, domain.ToolRuff),
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("independent tools did not run concurrently")
	}
}

func TestExecutor_SkipsToolsWithoutTargetsOrMarkedUnavailable(t *testing.T) {
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolESLint: {name: domain.ToolESLint, result: passing()},
		domain.ToolRuff:   {name: domain.ToolRuff, result: passing()},
		domain.ToolPylint: {name: domain.ToolPylint, result: passing()},
	}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	results, skipped := exec.Run(context.Background(), application.ExecutionInput{
		Plan:    lintPlan(domain.ToolESLint, domain.ToolRuff, domain.ToolPylint),
		Targets: targetsFor(domain.ToolESLint, domain.ToolPylint),
		Skip:    map[domain.ToolName]string{domain.ToolPylint: "not installed"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, domain.ToolESLint, results[0].Tool)
	assert.Equal(t, []domain.SkippedTool{
		{Tool: domain.ToolRuff, Dimension: domain.DimensionLint, Reason: "no matching files"},
		{Tool: domain.ToolPylint, Dimension: domain.DimensionLint, Reason: "not installed"},
	}, skipped)
}

func TestExecutor_ProjectLevelToolsRunWithoutTargets(t *testing.T) {
	jest := &scriptedWrapper{name: domain.ToolJest, result: passing()}
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{domain.ToolJest: jest}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	p := domain.ExecutionPlan{
		Dimensions: []domain.Dimension{domain.DimensionTest},
		Steps:      []domain.Step{{Dimension: domain.DimensionTest, Tool: domain.ToolJest}},
	}
	results, skipped := exec.Run(context.Background(), application.ExecutionInput{Plan: p})

	require.Len(t, results, 1)
	assert.Empty(t, skipped)
	assert.True(t, results[0].Success)
}

func TestExecutor_CancelledContextFailsRemainingTools(t *testing.T) {
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolESLint: {name: domain.ToolESLint, result: passing()},
	}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, _ := exec.Run(ctx, application.ExecutionInput{
		Plan:    lintPlan(domain.ToolESLint),
		Targets: targetsFor(domain.ToolESLint),
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Metadata.Error, "cancelled")
}

func TestExecutor_UnknownWrapperFailsOnlyThatTool(t *testing.T) {
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolESLint: {name: domain.ToolESLint, result: passing()},
	}}
	exec := application.NewExecutor(provider, domain.DefaultConfig(), discard)

	results, _ := exec.Run(context.Background(), application.ExecutionInput{
		Plan:    lintPlan(domain.ToolESLint, domain.ToolRuff),
		Targets: targetsFor(domain.ToolESLint, domain.ToolRuff),
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Metadata.Error, "no wrapper registered")
}

func TestExecutor_ParallelDimensionsKeepOrder(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ParallelDimensions = true
	provider := &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{
		domain.ToolPrettier: {name: domain.ToolPrettier, result: passing(), delay: 20 * time.Millisecond},
		domain.ToolESLint:   {name: domain.ToolESLint, result: failing(1)},
	}}
	exec := application.NewExecutor(provider, cfg, discard)

	p := domain.ExecutionPlan{
		Dimensions: []domain.Dimension{domain.DimensionFormat, domain.DimensionLint},
		Steps: []domain.Step{
			{Dimension: domain.DimensionFormat, Tool: domain.ToolPrettier},
			{Dimension: domain.DimensionLint, Tool: domain.ToolESLint},
		},
	}
	results, _ := exec.Run(context.Background(), application.ExecutionInput{
		Plan:    p,
		Targets: targetsFor(domain.ToolPrettier, domain.ToolESLint),
	})

	require.Len(t, results, 2)
	assert.Equal(t, domain.ToolPrettier, results[0].Tool)
	assert.Equal(t, domain.ToolESLint, results[1].Tool)
}
