package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/testutil"
)

func TestClusterDistinctHeights(t *testing.T) {
	mesh, err := Cluster([]float64{1, -2, -1, 2, -1, 1}, 0.05)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 1, 2}, mesh)
}

func TestClusterMergesNearHeights(t *testing.T) {
	mesh, err := Cluster([]float64{0, 1.0, 1.04, 3}, 0.05)
	require.NoError(t, err)
	require.Len(t, mesh, 3)
	assert.Equal(t, 0.0, mesh[0])
	assert.InDelta(t, 1.02, mesh[1], 1e-12)
	assert.Equal(t, 3.0, mesh[2])
}

func TestClusterChainWithinToleranceOfBothEnds(t *testing.T) {
	// 0.00 and 0.04 cluster; 0.08 is 0.08 away from the minimum, so it
	// starts a new cluster even though it is only 0.04 from the maximum.
	mesh, err := Cluster([]float64{0, 0.04, 0.08}, 0.05)
	require.NoError(t, err)
	require.Len(t, mesh, 2)
	assert.InDelta(t, 0.02, mesh[0], 1e-12)
	assert.InDelta(t, 0.08, mesh[1], 1e-12)
}

func TestClusterRejectsNonPositiveTolerance(t *testing.T) {
	for _, tol := range []float64{0, -0.1} {
		_, err := Cluster([]float64{1, 2}, tol)
		require.Error(t, err)
		assert.True(t, model.IsConfig(err))
		assert.True(t, model.HasCode(err, model.ErrCodeInvalidTolerance))
	}
}

func TestClusterStrictlyIncreasing(t *testing.T) {
	heights := []float64{5, 0.01, 0.02, 2.5, 2.51, 2.58, 9, 9.1, 9.2, -3, -2.95}
	for _, tol := range []float64{0.01, 0.05, 0.1, 0.5} {
		mesh, err := Cluster(heights, tol)
		require.NoError(t, err)
		for i := 1; i < len(mesh); i++ {
			assert.Greater(t, mesh[i], mesh[i-1], "tol=%g", tol)
		}
	}
}

func TestUnifyThreeSectionsNoSnap(t *testing.T) {
	c := testutil.ThreeSections()

	res, err := Unify(c, 0.05)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 1, 2}, res.Mesh)
	assert.Equal(t, []float64{-2, -1, 1, 2}, c.Mesh)
	assert.Empty(t, res.Snaps)
	assert.Equal(t, model.Bound{Lower: -2, Upper: 2}, c.CoolantBounds)
	assert.Equal(t, 3, c.Cells())
}

func TestUnifySnapsNearBounds(t *testing.T) {
	c := testutil.ThreeSections()
	a := c.Assembly(0)
	a.Stack[1].Bounds.Upper = 1.015625
	a.Stack[2].Bounds.Lower = 0.984375

	res, err := Unify(c, 0.05)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 1, 2}, res.Mesh)
	require.Len(t, res.Snaps, 2)
	assert.Equal(t, 1.0, a.Stack[1].Bounds.Upper)
	assert.Equal(t, 1.0, a.Stack[2].Bounds.Lower)

	diags := res.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, model.WarnBoundSnapped, diags[0].Code)
	assert.Equal(t, "01A01", diags[0].Subject)
}

func TestUnifyIsIdempotent(t *testing.T) {
	c := testutil.ThreeSections()
	a := c.Assembly(0)
	a.Stack[1].Bounds.Upper = 1.03
	a.Stack[2].Bounds.Lower = 0.99

	first, err := Unify(c, 0.05)
	require.NoError(t, err)
	require.NotEmpty(t, first.Snaps)
	stack := append([]model.Placement(nil), a.Stack...)

	second, err := Unify(c, 0.05)
	require.NoError(t, err)
	assert.Empty(t, second.Snaps)
	assert.Equal(t, first.Mesh, second.Mesh)
	assert.Equal(t, stack, a.Stack)
}

func TestUnifyReplacesPreviousMesh(t *testing.T) {
	c := testutil.ThreeSections()
	c.Mesh = []float64{-10, 0, 10}

	_, err := Unify(c, 0.05)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 1, 2}, c.Mesh)
}

func TestUnifyCase1(t *testing.T) {
	c := testutil.Case1()
	res, err := Unify(c, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 1, 2}, res.Mesh)
	assert.Empty(t, res.Snaps)
}

func TestUnifyPlacementsAreIndependent(t *testing.T) {
	c := testutil.Case1()
	// Raise one driver's slug/shield interface; the other drivers share the
	// section definitions but not the bounds.
	driver := c.Assembly(c.At(model.Coordinate{Ring: 1, Clock: 0}))
	for i := range driver.Stack {
		switch driver.Stack[i].Section {
		case testutil.SecUOX:
			driver.Stack[i].Bounds.Upper = 1.5
		case testutil.SecShieldAbove:
			driver.Stack[i].Bounds.Lower = 1.5
		}
	}

	res, err := Unify(c, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -1, 1, 1.5, 2}, res.Mesh)
	assert.Empty(t, res.Snaps)

	other := c.Assembly(c.At(model.Coordinate{Ring: 1, Clock: 2}))
	for _, p := range other.Stack {
		switch p.Section {
		case testutil.SecUOX:
			assert.Equal(t, 1.0, p.Bounds.Upper)
		case testutil.SecShieldAbove:
			assert.Equal(t, 1.0, p.Bounds.Lower)
		}
	}
}

func TestUnifyRejectsBadTolerance(t *testing.T) {
	c := testutil.ThreeSections()
	_, err := Unify(c, 0)
	require.Error(t, err)
	assert.Empty(t, c.Mesh)
}
