package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briamv/qacli/internal/adapters/inbound/cli"
	"github.com/briamv/qacli/internal/domain"
)

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".qa.yaml"), []byte(body), 0o644))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "qa dev")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"gate failed", domain.NewError(domain.ErrCodeGateFailed, "failed"), 1},
		{"critical tool", domain.NewError(domain.ErrCodeCriticalMissing, "missing"), 1},
		{"invalid flag", domain.NewError(domain.ErrCodeInvalidFlag, "bad"), 2},
		{"invalid config", fmt.Errorf("loading: %w", domain.NewError(domain.ErrCodeInvalidConfig, "bad")), 2},
		{"internal", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	_, err := execute(t, "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidFlag, domain.CodeOf(err))
	assert.Equal(t, 2, cli.ExitCode(err))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "plan", "--path", t.TempDir(), "--format", "jsn")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidFlag, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "--format=json")
}

func TestNegativeJobs(t *testing.T) {
	_, err := execute(t, "plan", "--path", t.TempDir(), "--jobs", "-1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidFlag, domain.CodeOf(err))
}

func TestInvalidConfigFailsBeforeAnyWork(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tools:\n  notatool:\n    disabled: true\n")

	_, err := execute(t, "--path", dir)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidConfig, domain.CodeOf(err))
	assert.Equal(t, 2, cli.ExitCode(err))
}

func TestGateRejectsPositionalArgs(t *testing.T) {
	_, err := execute(t, "frontend")
	assert.Error(t, err)
}

func TestSubcommandsRegistered(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"doctor", "plan", "tools", "init", "version", "mcp"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestPersistentFlagsShared(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	doctor, _, err := cmd.Find([]string{"doctor"})
	require.NoError(t, err)
	for _, flag := range []string{"mode", "scope", "dimension", "fast", "format", "path", "config", "jobs", "verbose", "log-format"} {
		assert.NotNil(t, lookupFlag(doctor, flag), "doctor should accept --%s", flag)
	}
}

func lookupFlag(c *cobra.Command, name string) any {
	if f := c.Flags().Lookup(name); f != nil {
		return f
	}
	if f := c.InheritedFlags().Lookup(name); f != nil {
		return f
	}
	return nil
}

func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), "output should be valid JSON:\n%s", out)
}
