package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/testutil"
)

func compileFile(t *testing.T, path string) (*model.Core, error) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	return CompileCore(v)
}

func compileString(t *testing.T, src string) (*model.Core, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("test.cue"))
	return CompileCore(v)
}

func TestCompileCore_Case1MatchesFixture(t *testing.T) {
	got, err := compileFile(t, filepath.Join("..", "..", "testdata", "cores", "case1", "core.cue"))
	require.NoError(t, err)

	want := testutil.Case1()
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(model.Core{}), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("compiled core mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileCore_StackByHeight(t *testing.T) {
	c, err := compileFile(t, filepath.Join("..", "..", "testdata", "cores", "stacked", "core.cue"))
	require.NoError(t, err)

	require.Len(t, c.Assemblies, 7)
	driver := c.Assembly(c.At(model.Coordinate{Ring: 0, Clock: 0}))
	assert.Equal(t, "driver", driver.Type)
	assert.Equal(t, "A00", driver.Location)
	assert.Equal(t, []model.Bound{{Lower: -60, Upper: -40}, {Lower: -40, Upper: 40}, {Lower: 40, Upper: 70}}, bounds(driver))

	short := c.Assembly(c.At(model.Coordinate{Ring: 1, Clock: 4}))
	assert.Equal(t, "reflector", short.Type)
	assert.Equal(t, "B04", short.Location)
	assert.Equal(t, []model.Bound{{Lower: -20, Upper: 0}, {Lower: 0, Upper: 40}}, bounds(short))

	steel := c.Material(1)
	assert.Equal(t, "steel", steel.Name)
	assert.Len(t, steel.ActiveNuclides(), 1)
}

func TestCompileCore_PlacementsOwnTheirStacks(t *testing.T) {
	c, err := compileFile(t, filepath.Join("..", "..", "testdata", "cores", "stacked", "core.cue"))
	require.NoError(t, err)

	a := c.Assembly(c.At(model.Coordinate{Ring: 1, Clock: 0}))
	b := c.Assembly(c.At(model.Coordinate{Ring: 1, Clock: 1}))
	a.Stack[0].Bounds.Lower = -100
	assert.Equal(t, -60.0, b.Stack[0].Bounds.Lower)
}

func TestCompileCore_NormalizesNames(t *testing.T) {
	c, err := compileString(t, `
core: {name: "café", rings: 1, pitch: 1.0, coolant: "w"}
material: m: {name: "é", nuclides: [{name: "H1", density: 0.1, temperature: 300}]}
section: w: region: [{size: 1.0, material: "m"}]
assembly: a: stack: [{section: "w", bounds: [0, 1]}]
lattice: [[{location: "A", assembly: "a"}]]
`)
	require.NoError(t, err)
	assert.Equal(t, "café", c.Name)
	assert.Equal(t, "é", c.Materials[0].Name)
}

func bounds(a *model.Assembly) []model.Bound {
	out := make([]model.Bound, len(a.Stack))
	for i, p := range a.Stack {
		out[i] = p.Bounds
	}
	return out
}

const minimalPrefix = `
core: {name: "c", rings: 1, pitch: 1.0, coolant: "w"}
material: m: nuclides: [{name: "H1", density: 0.1, temperature: 300}]
`

func TestCompileCore_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing core",
			src:       `lattice: []`,
			wantField: "cue",
		},
		{
			name:      "unknown top-level field",
			src:       minimalPrefix + `section: w: {}` + "\n" + `lattice: []` + "\n" + `extra: 1`,
			wantField: "cue",
		},
		{
			name:      "invalid method",
			src:       minimalPrefix + `section: w: method: "2-D"` + "\n" + `lattice: []`,
			wantField: "cue",
		},
		{
			name:      "unknown coolant",
			src:       minimalPrefix + `section: x: {}` + "\n" + `lattice: []`,
			wantField: "core.coolant",
			wantMsg:   `unknown section "w"`,
		},
		{
			name:      "unknown material",
			src:       minimalPrefix + `section: w: region: [{size: 1, material: "nope"}]` + "\n" + `lattice: []`,
			wantField: "section.w.region[0].material",
			wantMsg:   `unknown material "nope"`,
		},
		{
			name:      "supercell without partner",
			src:       minimalPrefix + `section: w: method: "supercell"` + "\n" + `lattice: []`,
			wantField: "section.w.partner",
		},
		{
			name:      "partner on homogeneous section",
			src:       minimalPrefix + `section: w: partner: "w"` + "\n" + `lattice: []`,
			wantField: "section.w.partner",
		},
		{
			name:      "self partner",
			src:       minimalPrefix + `section: w: {method: "supercell", partner: "w"}` + "\n" + `lattice: []`,
			wantField: "section.partner",
		},
		{
			name: "unknown assembly",
			src: minimalPrefix + `section: w: {}
lattice: [[{location: "A", assembly: "nope"}]]`,
			wantField: "lattice[0][0].assembly",
		},
		{
			name: "mixed stack",
			src: minimalPrefix + `section: w: {}
assembly: a: {
	stack: [{section: "w", bounds: [0, 1]}, {section: "w", height: 1}]
	reference: index: 0
}
lattice: []`,
			wantField: "assembly.a.stack[1]",
			wantMsg:   "cannot mix",
		},
		{
			name: "heights without reference",
			src: minimalPrefix + `section: w: {}
assembly: a: stack: [{section: "w", height: 1}]
lattice: []`,
			wantField: "assembly.a.reference",
		},
		{
			name: "reference out of range",
			src: minimalPrefix + `section: w: {}
assembly: a: {
	stack: [{section: "w", height: 1}]
	reference: index: 3
}
lattice: []`,
			wantField: "assembly.a.reference",
			wantMsg:   "out of range",
		},
		{
			name: "inverted bounds",
			src: minimalPrefix + `section: w: {}
assembly: a: stack: [{section: "w", bounds: [1, 0]}]
lattice: []`,
			wantField: "assembly.a.stack[0].bounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src)
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantField, ce.Field)
			if tt.wantMsg != "" {
				assert.Contains(t, ce.Message, tt.wantMsg)
			}
		})
	}
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "core.rings", Message: "must be >= 1"}
	assert.Equal(t, "core.rings: must be >= 1", err.Error())
}
