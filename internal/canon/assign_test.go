package canon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/testutil"
)

func sectionIDs(c *model.Core) []int {
	ids := make([]int, len(c.Sections))
	for i := range c.Sections {
		ids[i] = c.Sections[i].ID
	}
	return ids
}

func TestAssignCase1(t *testing.T) {
	c := testutil.Case1()
	a := canon.Assign(c)

	require.True(t, c.Completed())
	assert.Len(t, a.Assemblies, 19)
	assert.Len(t, a.Sections, 7)
	assert.Len(t, a.Materials, 6)

	want := map[model.SectionRef]int{
		testutil.SecPuOX:        1,
		testutil.SecUOX:         2,
		testutil.SecCoolant:     3,
		testutil.SecDummy:       4,
		testutil.SecShieldAbove: 5,
		testutil.SecShieldBelow: 6,
		testutil.SecPoison:      7,
	}
	for ref, id := range want {
		assert.Equal(t, id, c.Section(ref).ID, c.Section(ref).Name)
	}

	materials := map[string]int{}
	for _, ref := range a.Materials {
		materials[c.Material(ref).Name] = c.Material(ref).ID
	}
	assert.Equal(t, map[string]int{
		"B4C": 1, "PuO2": 2, "SS304": 3, "UO2": 4, "water": 5, "zircaloy": 6,
	}, materials)

	assert.Equal(t, 1, c.Assembly(c.At(model.Coordinate{Ring: 0, Clock: 0})).ID)
	for k := 0; k < 6; k++ {
		assert.Equal(t, 2+k, c.Assembly(c.At(model.Coordinate{Ring: 1, Clock: k})).ID)
	}
	for k := 0; k < 12; k++ {
		assert.Equal(t, 8+k, c.Assembly(c.At(model.Coordinate{Ring: 2, Clock: k})).ID)
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	c := testutil.Case1()
	first := canon.Assign(c)
	before := sectionIDs(c)

	second := canon.Assign(c)
	assert.Equal(t, first, second)
	assert.Equal(t, before, sectionIDs(c))
}

func TestAssignAddThenRemoveRestoresNumbering(t *testing.T) {
	c := testutil.Case1()
	canon.Assign(c)
	want := make([]int, len(c.Assemblies))
	for i := range c.Assemblies {
		want[i] = c.Assemblies[i].ID
	}

	extra := c.AddAssembly(model.Assembly{
		Type:     "dummy",
		Location: "00A00",
		Stack:    c.Assembly(c.At(model.Coordinate{Ring: 2, Clock: 0})).Stack,
	})
	coord := model.Coordinate{Ring: 3, Clock: 0}
	require.NoError(t, c.Place(coord, extra))
	assert.False(t, c.Completed())

	canon.Assign(c)
	assert.Equal(t, 1, c.Assembly(extra).ID)
	assert.Equal(t, 2, c.Assembly(c.At(model.Coordinate{Ring: 0, Clock: 0})).ID)

	c.Unplace(coord)
	canon.Assign(c)
	for i := range want {
		assert.Equal(t, want[i], c.Assemblies[i].ID, c.Assemblies[i].Location)
	}
	assert.Zero(t, c.Assembly(extra).ID)
}

func TestAssignIncludesSupercellPartner(t *testing.T) {
	c := model.NewCore("sc", 1, 1.0)
	water := c.AddMaterial(model.Material{Name: "water"})
	b4c := c.AddMaterial(model.Material{Name: "B4C"})
	steel := c.AddMaterial(model.Material{Name: "steel"})

	partner := c.AddSection(model.Section{
		Name:    "neighbor",
		Method:  model.EquivHomogeneous,
		Regions: []model.Layer{{Size: 1, Material: steel}},
		Partner: model.NoSection,
	})
	poison := c.AddSection(model.Section{
		Name:    "poison",
		Method:  model.EquivSupercell,
		Regions: []model.Layer{{Size: 1, Material: b4c}},
		Partner: partner,
	})
	c.Coolant = c.AddSection(model.Section{
		Name:    "coolant",
		Method:  model.EquivHomogeneous,
		Regions: []model.Layer{{Size: 1, Material: water}},
		Partner: model.NoSection,
	})
	asm := c.AddAssembly(model.Assembly{
		Location: "01A01",
		Stack:    []model.Placement{{Section: poison, Bounds: model.Bound{Lower: 0, Upper: 1}}},
	})
	require.NoError(t, c.AppendRing(asm))

	a := canon.Assign(c)
	assert.Equal(t, []model.SectionRef{c.Coolant, partner, poison}, a.Sections)
	assert.Equal(t, 2, c.Section(partner).ID)
	assert.Equal(t, 2, c.Material(steel).ID)
	assert.Equal(t, 3, c.Material(water).ID)
}
