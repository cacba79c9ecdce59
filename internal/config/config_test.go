package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexcore/internal/model"
)

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesSomeKeys(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
mesh:
  tolerance: 0.05
control:
  power: 1.0e8
  depletion: true
method:
  threads: 4
geometry:
  bc_axial: [1, 0]
`))
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Mesh.Tolerance)
	assert.Equal(t, 1.0e8, cfg.Control.Power)
	assert.True(t, cfg.Control.Depletion)
	assert.True(t, cfg.Control.OutputVTK, "unset keys keep their default")
	assert.Equal(t, 4, cfg.Method.Threads)
	assert.Equal(t, 16, cfg.Method.MaxInner)
	assert.Equal(t, []int{1, 0}, cfg.Geometry.BCAxial)
	assert.Equal(t, []int{1968, 33, 1}, cfg.XS.GroupStructure)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("mesh:\n  tolerence: 0.1\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   model.ErrorCode
	}{
		{"zero tolerance", func(c *Config) { c.Mesh.Tolerance = 0 }, model.ErrCodeInvalidTolerance},
		{"negative tolerance", func(c *Config) { c.Mesh.Tolerance = -0.1 }, model.ErrCodeInvalidTolerance},
		{"zero threshold", func(c *Config) { c.Densify.MaxHeight = 0 }, model.ErrCodeInvalidThreshold},
		{"short group structure", func(c *Config) { c.XS.GroupStructure = []int{1968, 33} }, model.ErrCodeInvalidConfig},
		{"bad group count", func(c *Config) { c.XS.GroupStructure = []int{1968, 0, 1} }, model.ErrCodeInvalidConfig},
		{"bc axial", func(c *Config) { c.Geometry.BCAxial = []int{0} }, model.ErrCodeInvalidConfig},
		{"odd sn order", func(c *Config) { c.Method.SNOrder = 3 }, model.ErrCodeInvalidConfig},
		{"threads", func(c *Config) { c.Method.Threads = 0 }, model.ErrCodeInvalidConfig},
		{"leakage", func(c *Config) { c.XS.LeakageCorrect = "" }, model.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, model.HasCode(err, tt.code), err.Error())
			assert.True(t, model.IsConfig(err))
		})
	}

	require.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("densify:\n  max_height: 2.5\n"), 0o644))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 2.5, cfg.Densify.MaxHeight)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, model.HasCode(err, model.ErrCodeMissingFile))
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: builds.db\n"), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, used, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "builds.db", cfg.Store.Path)
}
