package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briamv/qacli/internal/application"
	"github.com/briamv/qacli/internal/domain"
	"github.com/briamv/qacli/internal/domain/report"
)

type harness struct {
	prober   *fakeProber
	provider *fakeProvider
	svc      *application.RunService
}

func newHarness(t *testing.T, changed []string, wrappers ...*scriptedWrapper) *harness {
	t.Helper()
	cfg := domain.DefaultConfig()
	h := &harness{
		prober:   &fakeProber{},
		provider: &fakeProvider{wrappers: map[domain.ToolName]*scriptedWrapper{}},
	}
	for _, w := range wrappers {
		h.provider.wrappers[w.name] = w
	}
	scan := fakeScanner{files: map[string][]string{
		"src":     {"src/App.tsx", "src/index.css"},
		"backend": {"backend/app.py"},
		"scripts": {"scripts/deploy.sh"},
	}}
	env := application.NewEnvironmentService(h.prober, fakeValidator{perms: true}, cfg, discard)
	exec := application.NewExecutor(h.provider, cfg, discard)
	h.svc = application.NewRunService(cfg, scan, fakeGit{changed: changed}, env, exec, discard)
	return h
}

func TestRunService_ScenarioA_FormatterErrorsFailTheRun(t *testing.T) {
	h := newHarness(t, nil, &scriptedWrapper{name: domain.ToolPrettier, result: failing(2)})

	out, err := h.svc.Run(context.Background(), application.RunArgs{
		ProjectPath: t.TempDir(), Dimension: "format", Scope: "frontend",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Summary{Passed: 0, Failed: 1, Errors: 2}, out.Report.Summary)
	assert.Equal(t, 1, report.ExitCode(out.Report))
}

func TestRunService_ScenarioB_CleanLinterPasses(t *testing.T) {
	h := newHarness(t, nil, &scriptedWrapper{name: domain.ToolESLint, result: passing()})

	out, err := h.svc.Run(context.Background(), application.RunArgs{
		ProjectPath: t.TempDir(), Dimension: "lint", Scope: "frontend",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Report.Summary.Passed)
	assert.Equal(t, 0, out.Report.Summary.Failed)
	assert.Equal(t, 0, report.ExitCode(out.Report))
	assert.NotEmpty(t, out.Report.RunID)
	require.NotNil(t, out.Report.Plan)
	assert.Equal(t, []domain.ToolName{domain.ToolESLint}, out.Report.Plan.RequiredTools)
	require.NotNil(t, out.Report.Git)
	assert.Equal(t, "main", out.Report.Git.Branch)
}

func TestRunService_ScenarioC_TargetedProbing(t *testing.T) {
	h := newHarness(t, nil)

	p, env, err := h.svc.Doctor(context.Background(), application.RunArgs{
		ProjectPath: t.TempDir(), Dimension: "format", Scope: "frontend",
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.ToolName{domain.ToolPrettier}, p.RequiredTools)
	assert.Equal(t, []domain.ToolName{domain.ToolPrettier}, h.prober.probedSorted())
	assert.Len(t, env.Tools, 1)
}

func TestRunService_CriticalToolMissingAbortsBeforeExecution(t *testing.T) {
	prettier := &scriptedWrapper{name: domain.ToolPrettier, result: passing()}
	h := newHarness(t, nil, prettier)
	h.prober.available = map[domain.ToolName]bool{}

	out, err := h.svc.Run(context.Background(), application.RunArgs{
		ProjectPath: t.TempDir(), Dimension: "format", Scope: "frontend",
	})

	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeCriticalMissing, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "prettier.io")
	assert.Empty(t, prettier.files, "nothing runs after a critical tool is missing")
	assert.Contains(t, out.Environment.Tools, domain.ToolPrettier)
}

func TestRunService_OptionalToolMissingIsSkipped(t *testing.T) {
	h := newHarness(t, nil, &scriptedWrapper{name: domain.ToolShellcheck, result: passing()})
	h.prober.available = map[domain.ToolName]bool{domain.ToolShfmt: false, domain.ToolShellcheck: true}

	out, err := h.svc.Run(context.Background(), application.RunArgs{
		ProjectPath: t.TempDir(), Mode: "fast", Scope: "infra",
		// fast mode targets changed files only; nothing changed here.
	})
	require.NoError(t, err)

	assert.Empty(t, out.Report.Details)
	require.Len(t, out.Report.Skipped, 2)
	assert.Equal(t, domain.ToolShfmt, out.Report.Skipped[0].Tool)
	assert.Contains(t, out.Report.Skipped[0].Reason, "not installed")
	assert.Equal(t, "no matching files", out.Report.Skipped[1].Reason)
	assert.Equal(t, 0, report.ExitCode(out.Report))
}

func TestRunService_FastModeTargetsChangedFiles(t *testing.T) {
	prettier := &scriptedWrapper{name: domain.ToolPrettier, result: passing()}
	eslint := &scriptedWrapper{name: domain.ToolESLint, result: passing()}
	black := &scriptedWrapper{name: domain.ToolBlack, result: passing()}
	ruff := &scriptedWrapper{name: domain.ToolRuff, result: passing()}
	pylint := &scriptedWrapper{name: domain.ToolPylint, result: passing()}
	h := newHarness(t, []string{"src/App.tsx", "backend/api.py", "README.md"}, prettier, eslint, black, ruff, pylint)
	h.prober.available = map[domain.ToolName]bool{
		domain.ToolPrettier: true, domain.ToolESLint: true, domain.ToolBlack: true,
		domain.ToolRuff: true, domain.ToolPylint: true,
	}

	out, err := h.svc.Run(context.Background(), application.RunArgs{ProjectPath: t.TempDir(), Fast: true})
	require.NoError(t, err)

	require.Len(t, prettier.files, 1)
	assert.Equal(t, []string{"src/App.tsx"}, prettier.files[0])
	require.Len(t, black.files, 1)
	assert.Equal(t, []string{"backend/api.py"}, black.files[0])
	assert.Equal(t, 5, out.Report.Summary.Passed)
	for _, sk := range out.Report.Skipped {
		assert.NotEqual(t, domain.ToolPrettier, sk.Tool)
	}
}

func TestRunService_ConfigErrorStopsBeforeProbing(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.Run(context.Background(), application.RunArgs{ProjectPath: t.TempDir(), Dimension: "lnt"})

	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidFlag, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "did you mean --dimension=lint?")
	assert.Empty(t, h.prober.probedSorted())
}

func TestRunService_IdempotentSummary(t *testing.T) {
	h := newHarness(t, nil,
		&scriptedWrapper{name: domain.ToolESLint, result: failing(1)},
		&scriptedWrapper{name: domain.ToolRuff, result: passing()},
		&scriptedWrapper{name: domain.ToolPylint, result: passing()},
		&scriptedWrapper{name: domain.ToolShellcheck, result: passing()},
	)
	args := application.RunArgs{ProjectPath: t.TempDir(), Dimension: "lint"}

	first, err := h.svc.Run(context.Background(), args)
	require.NoError(t, err)
	second, err := h.svc.Run(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, first.Report.Summary, second.Report.Summary)
	assert.NotEqual(t, first.Report.RunID, second.Report.RunID)
	assert.Equal(t, first.Report.Summary.Passed+first.Report.Summary.Failed, len(first.Report.Details))
}
