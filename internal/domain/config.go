package domain

import (
	"fmt"
	"time"
)

const (
	DefaultProbeTimeout   = 5 * time.Second
	DefaultToolTimeout    = 5 * time.Minute
	DefaultJobs           = 4
	DefaultGroupThreshold = 3
)

// ProjectConfig holds project-level configuration loaded from .qa.yaml.
type ProjectConfig struct {
	Scopes             map[Scope]ScopeConfig     `yaml:"scopes"              json:"scopes,omitempty"`
	Venvs              []string                  `yaml:"venvs"               json:"venvs,omitempty"`
	ProbeTimeout       time.Duration             `yaml:"probe_timeout"       json:"probe_timeout,omitempty"`
	ToolTimeout        time.Duration             `yaml:"tool_timeout"        json:"tool_timeout,omitempty"`
	Jobs               int                       `yaml:"jobs"                json:"jobs,omitempty"`
	Parallel           *bool                     `yaml:"parallel"            json:"parallel,omitempty"`
	ParallelDimensions bool                      `yaml:"parallel_dimensions" json:"parallel_dimensions,omitempty"`
	GroupThreshold     int                       `yaml:"group_threshold"     json:"group_threshold,omitempty"`
	Tools              map[ToolName]ToolOverride `yaml:"tools"               json:"tools,omitempty"`
}

// ScopeConfig lists the directories that make up a scope.
type ScopeConfig struct {
	Paths []string `yaml:"paths" json:"paths"`
}

// ToolOverride adjusts one catalogued tool. Pointer fields distinguish
// "not specified" from false.
type ToolOverride struct {
	Critical    *bool         `yaml:"critical,omitempty"     json:"critical,omitempty"`
	Disabled    bool          `yaml:"disabled,omitempty"     json:"disabled,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"      json:"timeout,omitempty"`
	Args        []string      `yaml:"args,omitempty"         json:"args,omitempty"`
	DockerImage string        `yaml:"docker_image,omitempty" json:"docker_image,omitempty"`
}

// DefaultConfig returns the layout of a React frontend plus Python backend
// repository.
func DefaultConfig() ProjectConfig {
	parallel := true
	return ProjectConfig{
		Scopes: map[Scope]ScopeConfig{
			ScopeFrontend: {Paths: []string{"src", "frontend"}},
			ScopeBackend:  {Paths: []string{"backend"}},
			ScopeInfra:    {Paths: []string{"scripts", "tools", "docker", ".github"}},
		},
		Venvs:          []string{".venv", "backend/.venv", "venv"},
		ProbeTimeout:   DefaultProbeTimeout,
		ToolTimeout:    DefaultToolTimeout,
		Jobs:           DefaultJobs,
		Parallel:       &parallel,
		GroupThreshold: DefaultGroupThreshold,
	}
}

// ScopePaths returns the configured directories for the given scope,
// expanding ScopeAll.
func (c ProjectConfig) ScopePaths(scope Scope) []string {
	var out []string
	for _, s := range scope.Expand() {
		out = append(out, c.Scopes[s].Paths...)
	}
	return out
}

// Descriptor returns the catalogued descriptor with overrides applied.
func (c ProjectConfig) Descriptor(tool ToolName) (ToolDescriptor, bool) {
	desc, ok := Descriptors[tool]
	if !ok {
		return ToolDescriptor{}, false
	}
	if o, ok := c.Tools[tool]; ok {
		if o.Critical != nil {
			desc.Critical = *o.Critical
		}
		if o.DockerImage != "" {
			desc.DockerImage = o.DockerImage
		}
	}
	return desc, true
}

// IsDisabled reports whether the tool was switched off in config.
func (c ProjectConfig) IsDisabled(tool ToolName) bool {
	return c.Tools[tool].Disabled
}

// TimeoutFor returns the execution timeout for a tool.
func (c ProjectConfig) TimeoutFor(tool ToolName) time.Duration {
	if o, ok := c.Tools[tool]; ok && o.Timeout > 0 {
		return o.Timeout
	}
	if c.ToolTimeout > 0 {
		return c.ToolTimeout
	}
	return DefaultToolTimeout
}

// ArgsFor returns extra arguments configured for a tool.
func (c ProjectConfig) ArgsFor(tool ToolName) []string {
	return c.Tools[tool].Args
}

// ParallelEnabled reports whether independent tools may run concurrently.
func (c ProjectConfig) ParallelEnabled() bool {
	return c.Parallel == nil || *c.Parallel
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	for scope := range c.Scopes {
		if !isConcreteScope(scope) {
			return fmt.Errorf("scopes: unknown scope %q (valid: frontend, backend, infra)", scope)
		}
	}
	for tool := range c.Tools {
		if _, ok := Descriptors[tool]; !ok {
			return fmt.Errorf("tools: unknown tool %q", tool)
		}
	}
	if c.ProbeTimeout < 0 {
		return fmt.Errorf("probe_timeout must not be negative, got %s", c.ProbeTimeout)
	}
	if c.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout must not be negative, got %s", c.ToolTimeout)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.GroupThreshold < 0 {
		return fmt.Errorf("group_threshold must not be negative, got %d", c.GroupThreshold)
	}
	for tool, o := range c.Tools {
		if o.Timeout < 0 {
			return fmt.Errorf("tools.%s.timeout must not be negative, got %s", tool, o.Timeout)
		}
	}
	return nil
}

func isConcreteScope(s Scope) bool {
	for _, c := range ConcreteScopes {
		if c == s {
			return true
		}
	}
	return false
}
