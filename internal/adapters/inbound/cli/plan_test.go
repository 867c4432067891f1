package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briamv/qacli/internal/domain"
)

func TestPlanCommand_DefaultsToAutomaticAll(t *testing.T) {
	out, err := execute(t, "plan", "--path", t.TempDir(), "--format", "json")
	require.NoError(t, err)

	var p domain.ExecutionPlan
	decodeJSON(t, out, &p)
	assert.Equal(t, domain.ModeAutomatic, p.Mode)
	assert.Equal(t, domain.ScopeAll, p.Scope)
	assert.Equal(t, domain.AllDimensions, p.Dimensions)
}

func TestPlanCommand_SingleDimension(t *testing.T) {
	out, err := execute(t, "plan", "--path", t.TempDir(), "--format", "json", "--dimension", "data")
	require.NoError(t, err)

	var p domain.ExecutionPlan
	decodeJSON(t, out, &p)
	assert.Equal(t, domain.ModeDimension, p.Mode)
	assert.Equal(t, []domain.Dimension{domain.DimensionData}, p.Dimensions)
	assert.Equal(t, []domain.ToolName{domain.ToolSQLFluff}, p.RequiredTools)
}

func TestPlanCommand_Tree(t *testing.T) {
	out, err := execute(t, "plan", "--path", t.TempDir(), "--fast")
	require.NoError(t, err)
	assert.Contains(t, out, "mode fast")
	assert.Contains(t, out, "prettier")
	assert.Contains(t, out, "no changed files in scope")
	assert.NotContains(t, out, "pytest")
}

func TestPlanCommand_InvalidModeSuggests(t *testing.T) {
	_, err := execute(t, "plan", "--path", t.TempDir(), "--mode", "fst")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidFlag, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "did you mean --mode=fast?")
}

func TestPlanCommand_ScopeModeRequiresScope(t *testing.T) {
	_, err := execute(t, "plan", "--path", t.TempDir(), "--mode", "scope")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeMissingFlag, domain.CodeOf(err))
}

func TestPlanCommand_DisabledToolsLeaveEmptyPlan(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tools:\n  sqlfluff:\n    disabled: true\n")

	_, err := execute(t, "plan", "--path", dir, "--dimension", "data")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeEmptyPlan, domain.CodeOf(err))
}

func TestPlanCommand_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "plan", "--path", dir, "--config", "missing.yaml")
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeInvalidConfig, domain.CodeOf(err))
}
