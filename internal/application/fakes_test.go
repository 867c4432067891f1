package application_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/briamv/qacli/internal/domain"
	qalog "github.com/briamv/qacli/internal/log"
)

var discard = qalog.Discard()

// fakeProber answers from a fixed table and records what it was asked.
type fakeProber struct {
	mu        sync.Mutex
	available map[domain.ToolName]bool
	slow      map[domain.ToolName]bool
	timeout   time.Duration
	probed    []domain.ToolName
}

func (p *fakeProber) Probe(ctx context.Context, desc domain.ToolDescriptor) domain.ToolProbeResult {
	p.mu.Lock()
	p.probed = append(p.probed, desc.Name)
	p.mu.Unlock()

	if p.slow[desc.Name] {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		<-ctx.Done()
		return domain.ToolProbeResult{Tool: desc.Name, Error: fmt.Sprintf("probe timed out after %s", p.timeout)}
	}
	if p.available != nil && !p.available[desc.Name] {
		return domain.ToolProbeResult{Tool: desc.Name, Error: string(desc.Name) + " not found"}
	}
	return domain.ToolProbeResult{Tool: desc.Name, Available: true, Version: "1.0.0", DetectionMethod: domain.DetectionStandard}
}

func (p *fakeProber) probedSorted() []domain.ToolName {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]domain.ToolName{}, p.probed...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type fakeValidator struct {
	env   map[string]string
	perms bool
}

func (v fakeValidator) CheckEnvironmentVariables(required []string) map[string]domain.EnvVarStatus {
	out := map[string]domain.EnvVarStatus{}
	for _, name := range required {
		out[name] = domain.EnvVarStatus{Required: true, Available: v.env[name] != ""}
	}
	return out
}

func (v fakeValidator) CheckFileSystemPermissions([]string) bool { return v.perms }

// scriptedWrapper returns a canned result, optionally panicking.
type scriptedWrapper struct {
	name   domain.ToolName
	result domain.ToolResult
	panics bool
	delay  time.Duration

	mu    sync.Mutex
	files [][]string
	onRun func(domain.ToolName)
}

func (w *scriptedWrapper) Name() domain.ToolName            { return w.name }
func (w *scriptedWrapper) IsAvailable(context.Context) bool { return true }

func (w *scriptedWrapper) Execute(_ context.Context, files []string, opts domain.ExecOptions) domain.ToolResult {
	if w.onRun != nil {
		w.onRun(w.name)
	}
	w.mu.Lock()
	w.files = append(w.files, files)
	w.mu.Unlock()
	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	if w.panics {
		panic("boom")
	}
	res := w.result
	res.Tool = w.name
	res.Dimension = opts.Dimension
	if res.Violations == nil {
		res.Violations = []domain.Violation{}
	}
	return res
}

type fakeProvider struct {
	wrappers map[domain.ToolName]*scriptedWrapper
}

func (p *fakeProvider) Get(tool domain.ToolName) (domain.Wrapper, error) {
	w, ok := p.wrappers[tool]
	if !ok {
		return nil, fmt.Errorf("no wrapper registered for %q", tool)
	}
	return w, nil
}

func passing() domain.ToolResult { return domain.ToolResult{Success: true} }

func failing(n int) domain.ToolResult {
	r := domain.ToolResult{Success: false}
	for i := 0; i < n; i++ {
		r.Violations = append(r.Violations, domain.Violation{File: "a", Line: i + 1, Severity: domain.SeverityError, Message: "bad"})
	}
	return r
}

type fakeScanner struct {
	files map[string][]string
}

// Scan returns every fixture file under roots with a wanted extension.
func (s fakeScanner) Scan(_ string, roots []string, extensions []string) ([]string, error) {
	var out []string
	for _, r := range roots {
		for _, f := range s.files[r] {
			if len(extensions) == 0 || hasExt(f, extensions) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func hasExt(f string, exts []string) bool {
	for _, e := range exts {
		if len(f) > len(e) && f[len(f)-len(e):] == e {
			return true
		}
	}
	return false
}

type fakeGit struct {
	changed []string
}

func (g fakeGit) Context(string) (*domain.GitContext, error) {
	return &domain.GitContext{Branch: "main", CommitHash: "abc123"}, nil
}

func (g fakeGit) ChangedFiles(string) ([]string, error) { return g.changed, nil }
