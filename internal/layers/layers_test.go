package layers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/layers"
	"github.com/roach88/hexcore/internal/mesh"
	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/runlength"
	"github.com/roach88/hexcore/internal/testutil"
)

type span struct {
	section     string
	lower, high float64
}

// build creates a core whose sections are named by the letters used in the
// stacks plus a coolant section "z", places one assembly per stack and
// completes and meshes it.
func build(t *testing.T, stacks ...[]span) *model.Core {
	t.Helper()
	c := model.NewCore("layers", 2, 1.0)
	water := c.AddMaterial(model.Material{Name: "water"})
	refs := map[string]model.SectionRef{}
	section := func(name string) model.SectionRef {
		if ref, ok := refs[name]; ok {
			return ref
		}
		ref := c.AddSection(model.Section{
			Name:    name,
			Method:  model.EquivHomogeneous,
			Regions: []model.Layer{{Size: 1, Material: water}},
			Partner: model.NoSection,
		})
		refs[name] = ref
		return ref
	}
	c.Coolant = section("z")

	var placed []model.AssemblyRef
	for i, stack := range stacks {
		asm := model.Assembly{Location: string(rune('A' + i))}
		for _, s := range stack {
			asm.Stack = append(asm.Stack, model.Placement{
				Section: section(s.section),
				Bounds:  model.Bound{Lower: s.lower, Upper: s.high},
			})
		}
		placed = append(placed, c.AddAssembly(asm))
	}
	require.NoError(t, c.AppendRing(placed[0]))
	if len(placed) > 1 {
		require.NoError(t, c.AppendRing(placed[1:]...))
	}

	canon.Assign(c)
	_, err := mesh.Unify(c, 0.05)
	require.NoError(t, err)
	return c
}

func TestEncodeThreeSections(t *testing.T) {
	c := testutil.ThreeSections()
	canon.Assign(c)
	res, err := mesh.Unify(c, 0.05)
	require.NoError(t, err)
	require.Equal(t, []float64{-2, -1, 1, 2}, res.Mesh)
	require.Empty(t, res.Snaps)

	rec, err := layers.Encode(c, 0)
	require.NoError(t, err)
	assert.Equal(t, runlength.Record[int]{{Count: 1, Value: 1}, {Count: 1, Value: 2}, {Count: 1, Value: 3}}, rec)
}

func TestEncodeCoolant(t *testing.T) {
	c := build(t,
		[]span{{"a", 0, 1}, {"b", 1, 2}, {"c", 2, 3}},
		[]span{{"d", 0, 3}, {"e", 3, 4}, {"f", 4, 5}},
		[]span{{"e", 2, 3}},
	)
	require.Equal(t, []float64{0, 1, 2, 3, 4, 5}, c.Mesh)
	require.Equal(t, 7, c.Section(c.Coolant).ID)

	tests := []struct {
		name string
		ref  model.AssemblyRef
		want runlength.Record[int]
	}{
		{"coolant above merges", 0, runlength.Record[int]{{Count: 1, Value: 1}, {Count: 1, Value: 2}, {Count: 1, Value: 3}, {Count: 2, Value: 7}}},
		{"repeated section merges", 1, runlength.Record[int]{{Count: 3, Value: 4}, {Count: 1, Value: 5}, {Count: 1, Value: 6}}},
		{"coolant below and above", 2, runlength.Record[int]{{Count: 2, Value: 7}, {Count: 1, Value: 5}, {Count: 2, Value: 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := layers.Encode(c, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec)
			assert.Equal(t, c.Cells(), rec.Len())
		})
	}
}

func TestEncodeCase1(t *testing.T) {
	c := testutil.Case1()
	_, err := c.Check()
	require.NoError(t, err)
	a := canon.Assign(c)
	_, err = mesh.Unify(c, 0.05)
	require.NoError(t, err)

	recs, err := layers.EncodeAll(c, a.Assemblies)
	require.NoError(t, err)
	require.Len(t, recs, 19)

	format := func(r runlength.Record[int]) string { return r.Join(runlength.FormatInt) }
	assert.Equal(t, "6 7 5", format(recs[0]))
	assert.Equal(t, "6 2 5", format(recs[1]))
	assert.Equal(t, "6 1 5", format(recs[2]))
	assert.Equal(t, "6 4 5", format(recs[18]))
}

func TestEncodeMalformedBounds(t *testing.T) {
	tests := []struct {
		name  string
		stack []span
	}{
		{"gap", []span{{"a", 0, 1}, {"c", 2, 3}}},
		{"overlap", []span{{"a", 0, 2}, {"b", 1, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := build(t, tt.stack)
			_, err := layers.Encode(c, 0)
			require.Error(t, err)
			assert.True(t, model.HasCode(err, model.ErrCodeMalformedBounds))
			assert.True(t, model.IsStructural(err))
		})
	}
}

func TestEncodeRequiresDerivedState(t *testing.T) {
	c := testutil.ThreeSections()
	_, err := layers.Encode(c, 0)
	assert.True(t, model.HasCode(err, model.ErrCodeNotCompleted))

	canon.Assign(c)
	_, err = layers.Encode(c, 0)
	assert.True(t, model.HasCode(err, model.ErrCodeNotMeshed))
}

func TestDecodeRoundTrip(t *testing.T) {
	c := build(t,
		[]span{{"a", 0, 1}, {"b", 1, 2}, {"c", 2, 3}},
		[]span{{"d", 0, 3}, {"e", 3, 4}, {"f", 4, 5}},
	)

	for _, ref := range []model.AssemblyRef{0, 1} {
		rec, err := layers.Encode(c, ref)
		require.NoError(t, err)
		cells, err := layers.Decode(rec, c.Cells())
		require.NoError(t, err)
		assert.Equal(t, rec, runlength.Encode(cells))
	}

	_, err := layers.Decode(runlength.Record[int]{{Count: 2, Value: 1}}, 5)
	assert.True(t, model.HasCode(err, model.ErrCodeMalformedBounds))
}
