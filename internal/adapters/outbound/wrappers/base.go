// Package wrappers adapts each external quality tool to domain.Wrapper:
// build a check-only command line, run it, parse the native output into
// violations and apply the shared success policy.
package wrappers

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/briamv/qacli/internal/domain"
)

// parseFunc turns captured output into violations. workDir is used to make
// reported paths project-relative.
type parseFunc func(out domain.ProcessResult, workDir string) ([]domain.Violation, error)

// toolSpec is everything tool-specific about a wrapper.
type toolSpec struct {
	// args are placed between the invocation and any extra configured args.
	args func(opts domain.ExecOptions) []string
	parse parseFunc

	// quietExits are non-zero exit codes that legitimately come with no
	// violations (for example "no tests collected").
	quietExits []int
}

// EnvResolver supplies the derived environment for a tool.
type EnvResolver interface {
	Environment(desc domain.ToolDescriptor) []string
}

// cliWrapper runs one tool as a subprocess.
type cliWrapper struct {
	desc   domain.ToolDescriptor
	spec   toolSpec
	runner domain.ProcessRunner
	prober domain.ToolProber
	env    EnvResolver
}

func (w *cliWrapper) Name() domain.ToolName { return w.desc.Name }

// IsAvailable probes the tool through the shared detection chain.
func (w *cliWrapper) IsAvailable(ctx context.Context) bool {
	if w.prober == nil {
		return false
	}
	return w.prober.Probe(ctx, w.desc).Available
}

// Execute runs the tool against files and never returns a Go error: every
// failure is folded into the result.
func (w *cliWrapper) Execute(ctx context.Context, files []string, opts domain.ExecOptions) domain.ToolResult {
	argv := w.commandLine(files, opts)

	env := opts.Env
	if env == nil && w.env != nil {
		env = w.env.Environment(w.desc)
	}

	start := time.Now()
	out, runErr := w.runner.Run(ctx, domain.Command{
		Argv:    argv,
		Dir:     opts.WorkDir,
		Env:     env,
		Timeout: opts.Timeout,
	})
	elapsed := time.Since(start)

	outcome := domain.ProcessOutcome{
		ExitCode: out.ExitCode,
		Started:  runErr == nil,
		TimedOut: out.TimedOut,
		Killed:   out.Killed,
	}

	var violations []domain.Violation
	if !outcome.Crashed() {
		violations, outcome.ParseErr = w.spec.parse(out, opts.WorkDir)
		if outcome.ParseErr != nil && w.quiet(out.ExitCode) && len(bytes.TrimSpace(out.Stdout)) == 0 {
			violations, outcome.ParseErr = nil, nil
		}
		if outcome.ParseErr == nil && len(violations) == 0 && out.ExitCode != 0 && !w.quiet(out.ExitCode) {
			outcome.ParseErr = fmt.Errorf("exit code %d without recognizable output", out.ExitCode)
		}
	}
	if violations == nil {
		violations = []domain.Violation{}
	}

	return domain.ToolResult{
		Tool:            w.desc.Name,
		Dimension:       opts.Dimension,
		Success:         domain.DetermineSuccess(violations, outcome),
		Violations:      violations,
		ExecutionTimeMs: elapsed.Milliseconds(),
		Metadata: domain.ResultMetadata{
			Command:     argv,
			ExitCode:    out.ExitCode,
			TimedOut:    out.TimedOut,
			Crashed:     outcome.Crashed(),
			Error:       failureText(runErr, out, outcome, opts.Timeout),
			TargetCount: targetCount(w.desc, files),
			Version:     opts.Version,
		},
	}
}

func (w *cliWrapper) commandLine(files []string, opts domain.ExecOptions) []string {
	argv := append([]string{}, opts.Invocation...)
	if len(argv) == 0 {
		argv = []string{w.desc.Binary()}
	}
	if w.spec.args != nil {
		argv = append(argv, w.spec.args(opts)...)
	}
	argv = append(argv, opts.ExtraArgs...)
	if !w.desc.ProjectLevel {
		argv = append(argv, files...)
	}
	return argv
}

func (w *cliWrapper) quiet(code int) bool {
	for _, c := range w.spec.quietExits {
		if c == code {
			return true
		}
	}
	return false
}

func targetCount(desc domain.ToolDescriptor, files []string) int {
	if desc.ProjectLevel {
		return 0
	}
	return len(files)
}

func failureText(runErr error, out domain.ProcessResult, outcome domain.ProcessOutcome, timeout time.Duration) string {
	switch {
	case runErr != nil:
		return runErr.Error()
	case out.TimedOut:
		return fmt.Sprintf("timed out after %s", timeout)
	case out.Killed:
		return "terminated by signal"
	case outcome.ParseErr != nil:
		msg := "unparseable output: " + outcome.ParseErr.Error()
		if tail := lastLine(out.Stderr); tail != "" {
			msg += " (" + tail + ")"
		}
		return msg
	}
	return ""
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// relPath reports p relative to workDir when it lies inside it.
func relPath(workDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || workDir == "" || !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(workDir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// jsonBody returns the output from the first JSON delimiter on, so banner
// lines printed before a JSON document do not break decoding.
func jsonBody(b []byte) []byte {
	for i, c := range b {
		if c == '{' || c == '[' {
			return b[i:]
		}
	}
	return nil
}

func outputLines(out domain.ProcessResult) []string {
	text := string(out.Stdout)
	if len(out.Stderr) > 0 {
		text += "\n" + string(out.Stderr)
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
