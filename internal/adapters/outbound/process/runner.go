package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/briamv/qacli/internal/domain"
)

// Runner implements domain.ProcessRunner with os/exec.
type Runner struct{}

func New() *Runner {
	return &Runner{}
}

// Run executes cmd and waits for it. The returned error is non-nil only
// when the process could not be started at all.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) (domain.ProcessResult, error) {
	if len(cmd.Argv) == 0 {
		return domain.ProcessResult{}, fmt.Errorf("empty command")
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	//nolint:gosec // G204: argv comes from the static tool catalog plus project config
	c := exec.CommandContext(runCtx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	if cmd.Env != nil {
		c.Env = cmd.Env
	}
	// Give a killed tool's children a moment to release the pipes.
	c.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	res := domain.ProcessResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err == nil {
		return res, nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		// ExitCode is -1 when the process was terminated by a signal.
		if res.ExitCode == -1 {
			res.Killed = true
		}
		return res, nil
	}

	if runCtx.Err() != nil {
		res.Killed = true
		res.ExitCode = -1
		return res, nil
	}

	return res, fmt.Errorf("starting %s: %w", cmd.Argv[0], err)
}
