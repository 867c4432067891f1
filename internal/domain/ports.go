package domain

import (
	"context"
	"time"
)

// Logger is the single diagnostic channel. Every event is logged once, at
// one call site.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Command describes one subprocess invocation.
type Command struct {
	Argv    []string
	Dir     string
	Env     []string
	Timeout time.Duration
}

// ProcessResult is what a finished subprocess left behind.
type ProcessResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	TimedOut bool
	Killed   bool
	Duration time.Duration
}

// ProcessRunner spawns subprocesses. Run returns an error only when the
// process could not be started; non-zero exits are reported in ExitCode.
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command) (ProcessResult, error)
}

// ToolProber decides whether a tool is usable on this machine.
type ToolProber interface {
	Probe(ctx context.Context, desc ToolDescriptor) ToolProbeResult
}

// ExecOptions carries per-invocation settings into a wrapper.
type ExecOptions struct {
	WorkDir   string
	Env       []string
	Timeout   time.Duration
	ExtraArgs []string
	Dimension Dimension

	// Invocation overrides the argv prefix (from the probe result).
	Invocation []string
	Version    string
}

// Wrapper adapts one external tool to the uniform execute-and-report contract.
type Wrapper interface {
	Name() ToolName
	IsAvailable(ctx context.Context) bool
	Execute(ctx context.Context, files []string, opts ExecOptions) ToolResult
}

// WrapperProvider hands out wrappers by tool name.
type WrapperProvider interface {
	Get(tool ToolName) (Wrapper, error)
}

// ProjectScanner lists files under a set of roots matching extensions.
type ProjectScanner interface {
	Scan(projectPath string, roots []string, extensions []string) ([]string, error)
}

// GitInfo reads repository state.
type GitInfo interface {
	Context(projectPath string) (*GitContext, error)
	ChangedFiles(projectPath string) ([]string, error)
}

// ConfigLoader reads project-level configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// EnvVarStatus describes one environment variable.
type EnvVarStatus struct {
	Required  bool `json:"required"`
	Available bool `json:"available"`
}

// EnvValidator checks the environment without modifying it.
type EnvValidator interface {
	CheckEnvironmentVariables(required []string) map[string]EnvVarStatus
	CheckFileSystemPermissions(paths []string) bool
}
