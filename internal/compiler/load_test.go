package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexcore/internal/model"
)

func TestCompileDir_Case1(t *testing.T) {
	c, err := CompileDir(filepath.Join("..", "..", "testdata", "cores", "case1"))
	require.NoError(t, err)
	assert.Equal(t, "case1", c.Name)
	assert.Len(t, c.Lattice, 3)
	assert.Equal(t, "poison slug", c.Section(c.Assembly(c.At(model.Coordinate{})).Stack[1].Section).Name)
}

func TestLoadDir_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "core.cue")
		require.NoError(t, os.WriteFile(path, []byte("core: {}\n"), 0o644))
		_, err := LoadDir(path)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := LoadDir(t.TempDir())
		assert.ErrorIs(t, err, ErrNoFiles)
	})

	t.Run("conflict", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("package bad\n\nx: 1\nx: 2\n"), 0o644))
		_, err := LoadDir(dir)
		assert.ErrorIs(t, err, ErrBuild)

		var ce *CompileError
		assert.ErrorAs(t, err, &ce)
	})
}
