package envcheck_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briamv/qacli/internal/adapters/outbound/envcheck"
	"github.com/briamv/qacli/internal/domain"
)

func TestCheckEnvironmentVariables(t *testing.T) {
	v := envcheck.NewWithLookup(map[string]string{
		"SNYK_TOKEN": "abc",
		"CI":         "",
	})

	status := v.CheckEnvironmentVariables([]string{"SNYK_TOKEN", "CUSTOM_TOKEN"})

	assert.Equal(t, domain.EnvVarStatus{Required: true, Available: true}, status["SNYK_TOKEN"])
	assert.Equal(t, domain.EnvVarStatus{Required: true, Available: false}, status["CUSTOM_TOKEN"])
	assert.Equal(t, domain.EnvVarStatus{Available: false}, status["CI"], "empty counts as unset")
	assert.Contains(t, status, "HTTPS_PROXY")
}

func TestMissing(t *testing.T) {
	status := map[string]domain.EnvVarStatus{
		"B":  {Required: true},
		"A":  {Required: true},
		"OK": {Required: true, Available: true},
		"CI": {},
	}
	assert.Equal(t, []string{"A", "B"}, envcheck.Missing(status))
}

func TestCheckFileSystemPermissions(t *testing.T) {
	dir := t.TempDir()
	v := envcheck.New()

	assert.True(t, v.CheckFileSystemPermissions([]string{dir}))
	assert.False(t, v.CheckFileSystemPermissions([]string{dir, filepath.Join(dir, "missing")}))
}

func TestCheckFileSystemPermissions_ReadOnly(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.Mkdir(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	assert.False(t, envcheck.New().CheckFileSystemPermissions([]string{dir}))
}
