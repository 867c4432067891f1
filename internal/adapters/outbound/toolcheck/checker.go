// Package toolcheck decides whether a catalogued tool is usable on this
// machine by walking a fallback chain of detection strategies.
package toolcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/briamv/qacli/internal/domain"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+`)

// ParseVersion extracts the first semantic version from probe output.
// Tools that answer without one are reported as "installed".
func ParseVersion(output string) string {
	if v := versionPattern.FindString(output); v != "" {
		return v
	}
	return "installed"
}

// Checker implements domain.ToolProber.
type Checker struct {
	runner  domain.ProcessRunner
	ambient Ambient
	timeout time.Duration
	logger  domain.Logger
}

func New(runner domain.ProcessRunner, ambient Ambient, timeout time.Duration, logger domain.Logger) *Checker {
	if timeout <= 0 {
		timeout = domain.DefaultProbeTimeout
	}
	return &Checker{runner: runner, ambient: ambient, timeout: timeout, logger: logger}
}

// Ambient returns the environment snapshot the checker probes against.
func (c *Checker) Ambient() Ambient { return c.ambient }

// Probe runs the detection chain for desc. The whole chain shares one
// deadline. Exactly one log line is emitted per call.
func (c *Checker) Probe(ctx context.Context, desc domain.ToolDescriptor) domain.ToolProbeResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.probe(ctx, desc)
	res.Tool = desc.Name
	if !res.Available && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.Error = fmt.Sprintf("probe timed out after %s", c.timeout)
	}

	if res.Available {
		c.logger.Info("tool available", "tool", desc.Name, "version", res.Version, "method", res.DetectionMethod)
	} else {
		c.logger.Warn("tool unavailable", "tool", desc.Name, "error", res.Error, "install", desc.InstallURL)
	}
	return res
}

func (c *Checker) probe(ctx context.Context, desc domain.ToolDescriptor) domain.ToolProbeResult {
	env := ResolvePathFor(desc, c.ambient)
	var failures []string

	if desc.InterpreterManaged && c.ambient.VenvDir != "" {
		bin := filepath.Join(venvBinDir(c.ambient.VenvDir, c.ambient.GOOS), executableName(desc.Binary(), c.ambient.GOOS))
		if isExecutable(bin, c.ambient.GOOS) {
			res, err := c.attempt(ctx, []string{bin}, desc, env, domain.DetectionVenv)
			if err == nil {
				return res
			}
			failures = append(failures, "venv: "+err.Error())
		} else {
			failures = append(failures, "venv: not installed in "+c.ambient.VenvDir)
		}
	}

	if ctx.Err() == nil {
		// The venv already had its turn; the PATH attempt must reach a
		// system install.
		system := c.ambient
		system.VenvDir = ""
		sysEnv := ResolvePathFor(desc, system)
		if c.ambient.VenvDir != "" {
			sysEnv = withoutPathEntry(sysEnv, venvBinDir(c.ambient.VenvDir, c.ambient.GOOS), c.ambient.GOOS)
		}
		if bin, ok := lookPath(desc.Binary(), sysEnv, c.ambient.GOOS); ok {
			res, err := c.attempt(ctx, []string{bin}, desc, sysEnv, domain.DetectionStandard)
			if err == nil {
				return res
			}
			failures = append(failures, "path: "+err.Error())
		} else {
			failures = append(failures, fmt.Sprintf("path: %s not found", desc.Binary()))
		}
	}

	for _, strategy := range desc.FallbackStrategies {
		if ctx.Err() != nil {
			break
		}
		var (
			res domain.ToolProbeResult
			err error
		)
		switch strategy {
		case domain.StrategyPackageManifest:
			res, err = c.fromManifest(desc)
		case domain.StrategyOSSuffix:
			res, err = c.fromAltCommands(ctx, desc, env)
		case domain.StrategyDocker:
			res, err = c.fromDocker(ctx, desc, env)
		default:
			continue
		}
		if err == nil {
			return res
		}
		failures = append(failures, string(strategy)+": "+err.Error())
	}

	return domain.ToolProbeResult{Error: strings.Join(failures, "; ")}
}

// attempt runs argv plus the probe arguments and accepts a zero exit.
func (c *Checker) attempt(ctx context.Context, argv []string, desc domain.ToolDescriptor, env EnvBlock, method domain.DetectionMethod) (domain.ToolProbeResult, error) {
	cmd := domain.Command{
		Argv: append(append([]string{}, argv...), desc.ProbeArgs()...),
		Dir:  c.ambient.WorkDir,
		Env:  env,
	}
	out, err := c.runner.Run(ctx, cmd)
	switch {
	case err != nil:
		return domain.ToolProbeResult{}, err
	case out.TimedOut || out.Killed:
		return domain.ToolProbeResult{}, fmt.Errorf("%s did not answer", argv[0])
	case out.ExitCode != 0:
		return domain.ToolProbeResult{}, fmt.Errorf("%s exited with code %d", argv[0], out.ExitCode)
	}
	return domain.ToolProbeResult{
		Available:       true,
		Version:         ParseVersion(string(out.Stdout) + string(out.Stderr)),
		DetectionMethod: method,
		Invocation:      argv,
	}, nil
}

type packageManifest struct {
	Version string `json:"version"`
}

// fromManifest reads node_modules/<pkg>/package.json. It spawns nothing,
// so it still answers when the node runtime itself is broken.
func (c *Checker) fromManifest(desc domain.ToolDescriptor) (domain.ToolProbeResult, error) {
	if desc.Package == "" {
		return domain.ToolProbeResult{}, fmt.Errorf("no package configured")
	}
	manifest := filepath.Join(c.ambient.WorkDir, "node_modules", desc.Package, "package.json")
	data, err := os.ReadFile(manifest)
	if err != nil {
		return domain.ToolProbeResult{}, fmt.Errorf("reading %s: %w", manifest, err)
	}
	var pkg packageManifest
	if err := json.Unmarshal(data, &pkg); err != nil {
		return domain.ToolProbeResult{}, fmt.Errorf("parsing %s: %w", manifest, err)
	}
	version := ParseVersion(pkg.Version)
	return domain.ToolProbeResult{
		Available:       true,
		Version:         version,
		DetectionMethod: domain.DetectionFile,
		Invocation:      []string{filepath.Join(c.ambient.WorkDir, "node_modules", ".bin", executableName(desc.Binary(), c.ambient.GOOS))},
	}, nil
}

func (c *Checker) fromAltCommands(ctx context.Context, desc domain.ToolDescriptor, env EnvBlock) (domain.ToolProbeResult, error) {
	if len(desc.AltCommands) == 0 {
		return domain.ToolProbeResult{}, fmt.Errorf("no alternative commands")
	}
	var last error
	for _, alt := range desc.AltCommands {
		bin, ok := lookPath(alt, env, c.ambient.GOOS)
		if !ok {
			last = fmt.Errorf("%s not found", alt)
			continue
		}
		res, err := c.attempt(ctx, []string{bin}, desc, env, domain.DetectionWSL)
		if err == nil {
			return res, nil
		}
		last = err
		if ctx.Err() != nil {
			break
		}
	}
	return domain.ToolProbeResult{}, last
}

func (c *Checker) fromDocker(ctx context.Context, desc domain.ToolDescriptor, env EnvBlock) (domain.ToolProbeResult, error) {
	if desc.DockerImage == "" {
		return domain.ToolProbeResult{}, fmt.Errorf("no image configured")
	}
	docker, ok := lookPath("docker", env, c.ambient.GOOS)
	if !ok {
		return domain.ToolProbeResult{}, fmt.Errorf("docker not found")
	}
	return c.attempt(ctx, DockerInvocation(docker, desc, c.ambient.WorkDir), desc, env, domain.DetectionDocker)
}

// DockerInvocation is the argv prefix that runs desc's binary inside its
// image with the project mounted at /src.
func DockerInvocation(docker string, desc domain.ToolDescriptor, workDir string) []string {
	return []string{
		docker, "run", "--rm",
		"--entrypoint", desc.Binary(),
		"-v", workDir + ":/src",
		"-w", "/src",
		desc.DockerImage,
	}
}

// Environment returns the derived environment desc should execute with.
func (c *Checker) Environment(desc domain.ToolDescriptor) []string {
	return ResolvePathFor(desc, c.ambient)
}
