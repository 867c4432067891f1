package wrappers

import (
	"fmt"
	"sync"

	"github.com/briamv/qacli/internal/domain"
)

// Manager implements domain.WrapperProvider. Wrappers are built on first
// use and cached for the lifetime of the manager, which is one run.
type Manager struct {
	runner domain.ProcessRunner
	prober domain.ToolProber
	env    EnvResolver
	cfg    domain.ProjectConfig

	mu    sync.Mutex
	cache map[domain.ToolName]domain.Wrapper
}

// NewManager creates a Manager. env may be nil, in which case tools inherit
// the process environment.
func NewManager(runner domain.ProcessRunner, prober domain.ToolProber, env EnvResolver, cfg domain.ProjectConfig) *Manager {
	return &Manager{
		runner: runner,
		prober: prober,
		env:    env,
		cfg:    cfg,
		cache:  make(map[domain.ToolName]domain.Wrapper),
	}
}

// Get returns the wrapper for tool.
func (m *Manager) Get(tool domain.ToolName) (domain.Wrapper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.cache[tool]; ok {
		return w, nil
	}

	build, ok := constructors[tool]
	if !ok {
		return nil, fmt.Errorf("no wrapper registered for %q", tool)
	}
	desc, ok := m.cfg.Descriptor(tool)
	if !ok {
		return nil, fmt.Errorf("no descriptor for %q", tool)
	}

	w := &cliWrapper{desc: desc, spec: build(), runner: m.runner, prober: m.prober, env: m.env}
	m.cache[tool] = w
	return w, nil
}
