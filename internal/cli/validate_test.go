package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWithWarnings(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), case1Dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ case1 is valid (3 warning(s))")
	assert.Contains(t, out, "[W205]")
}

func TestValidateStrict(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), case1Dir, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, out, "✗ case1 has 3 warning(s)")
}

func TestValidateStrictClean(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), stackedDir, "--strict")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "stacked", resp.Data.Case)
	assert.Empty(t, resp.Data.Warnings)
}

func TestValidateBrokenCore(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), brokenDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E103]")
	assert.Contains(t, out, `unknown material "lead"`)
}

func TestValidateMissingArgs(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
