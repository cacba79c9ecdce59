package deck_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/deck"
	"github.com/roach88/hexcore/internal/mesh"
	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/runlength"
	"github.com/roach88/hexcore/internal/testutil"
)

func prepare(t *testing.T, c *model.Core) *model.Core {
	t.Helper()
	_, err := c.Check()
	require.NoError(t, err)
	canon.Assign(c)
	_, err = mesh.Unify(c, 0.05)
	require.NoError(t, err)
	return c
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRenderGolden(t *testing.T) {
	fixtures := map[string]func() *model.Core{
		"three": testutil.ThreeSections,
		"case1": testutil.Case1,
	}

	for name, fixture := range fixtures {
		t.Run(name, func(t *testing.T) {
			c := prepare(t, fixture())

			xs, err := deck.RenderXS(c, nil)
			require.NoError(t, err)
			golden(t).Assert(t, "xs_"+name, []byte(xs))

			core, err := deck.RenderCore(c, nil)
			require.NoError(t, err)
			golden(t).Assert(t, "core_"+name, []byte(core))
		})
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	first, err := deck.RenderCore(prepare(t, testutil.Case1()), nil)
	require.NoError(t, err)
	second, err := deck.RenderCore(prepare(t, testutil.Case1()), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderRequiresDerivedState(t *testing.T) {
	c := testutil.Case1()
	_, err := deck.RenderXS(c, nil)
	assert.True(t, model.HasCode(err, model.ErrCodeNotCompleted))
	_, err = deck.RenderCore(c, nil)
	assert.True(t, model.HasCode(err, model.ErrCodeNotCompleted))

	canon.Assign(c)
	_, err = deck.RenderXS(c, nil)
	assert.NoError(t, err, "the cross-section deck does not need a mesh")
	_, err = deck.RenderCore(c, nil)
	assert.True(t, model.HasCode(err, model.ErrCodeNotMeshed))
}

func TestRenderXSMissingRingNumber(t *testing.T) {
	c := testutil.Case1()
	c.Section(testutil.SecUOX).RodRings = 0
	prepare(t, c)

	_, err := deck.RenderXS(c, nil)
	require.Error(t, err)
	assert.True(t, model.HasCode(err, model.ErrCodeMissingRingNumber))
}

func TestRenderXSInvalidGeomKind(t *testing.T) {
	c := testutil.Case1()
	c.Section(testutil.SecDummy).Method = "2-D"
	prepare(t, c)

	_, err := deck.RenderXS(c, nil)
	require.Error(t, err)
	assert.True(t, model.HasCode(err, model.ErrCodeInvalidGeomKind))
	assert.Contains(t, err.Error(), "dummy slug")
}

func TestRenderCoreAfterLatticeEditNeedsMesh(t *testing.T) {
	c := prepare(t, testutil.ThreeSections())

	tall := c.AddAssembly(model.Assembly{
		Type:     "tall",
		Location: "02A00",
		Stack:    []model.Placement{{Section: 0, Bounds: model.Bound{Lower: -5, Upper: 5}}},
	})
	require.NoError(t, c.Place(model.Coordinate{Ring: 1, Clock: 0}, tall))
	canon.Assign(c)

	_, err := deck.RenderCore(c, nil)
	require.Error(t, err)
	assert.True(t, model.HasCode(err, model.ErrCodeNotMeshed))

	_, err = mesh.Unify(c, 0.05)
	require.NoError(t, err)
	assert.Equal(t, []float64{-5, -2, -1, 1, 2, 5}, c.Mesh)
	core, err := deck.RenderCore(c, nil)
	require.NoError(t, err)
	assert.Contains(t, core, "layer           5")
}

func TestLatticeRowsEmptySlot(t *testing.T) {
	c := prepare(t, testutil.Case1())
	c.Unplace(model.Coordinate{Ring: 2, Clock: 5})

	_, err := deck.LatticeRows(c)
	require.Error(t, err)
	assert.True(t, model.HasCode(err, model.ErrCodeEmptySlot))
}

func TestLatticeRowsCase1(t *testing.T) {
	c := prepare(t, testutil.Case1())
	rows, err := deck.LatticeRows(c)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "     1        18  19   8", rows[0])
	assert.Equal(t, "     3      16   6   1   3  10", rows[2])
}

func TestLayerLine(t *testing.T) {
	assert.Equal(t, "layer           3               2*1.0000 0.5000 ", deck.LayerLine([]float64{1, 1, 0.5}))
	assert.Equal(t, "layer           1               1.0000          ", deck.LayerLine([]float64{1}))
}

func TestAssemblyLine(t *testing.T) {
	rec := runlength.Record[int]{{Count: 2, Value: 7}, {Count: 1, Value: 1}}
	assert.Equal(t, "FA_type         3               2*7 1", deck.AssemblyLine(3, rec))
}
