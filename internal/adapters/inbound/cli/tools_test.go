package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briamv/qacli/internal/domain"
)

type toolRow struct {
	Tool       string   `json:"tool"`
	Category   string   `json:"category"`
	Dimensions []string `json:"dimensions"`
	Critical   bool     `json:"critical"`
}

func TestToolsCommand_ListsCatalog(t *testing.T) {
	out, err := execute(t, "tools", "--path", t.TempDir(), "--format", "json")
	require.NoError(t, err)

	var rows []toolRow
	decodeJSON(t, out, &rows)
	require.Len(t, rows, len(domain.Descriptors))

	byName := map[string]toolRow{}
	for _, r := range rows {
		byName[r.Tool] = r
	}
	assert.Equal(t, "linter", byName["sqlfluff"].Category)
	assert.Equal(t, []string{"data"}, byName["sqlfluff"].Dimensions)
	assert.Equal(t, []string{"security"}, byName["semgrep"].Dimensions)
	assert.True(t, byName["eslint"].Critical)
}

func TestToolsCommand_HonoursConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tools:\n  pylint:\n    disabled: true\n  eslint:\n    critical: false\n")

	out, err := execute(t, "tools", "--path", dir, "--format", "json")
	require.NoError(t, err)

	var rows []toolRow
	decodeJSON(t, out, &rows)
	for _, r := range rows {
		assert.NotEqual(t, "pylint", r.Tool)
		if r.Tool == "eslint" {
			assert.False(t, r.Critical)
		}
	}
}

func TestToolsCommand_Table(t *testing.T) {
	out, err := execute(t, "tools", "--path", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "TOOL")
	assert.Contains(t, out, "shellcheck")
	assert.Contains(t, out, "type-checker")
}
