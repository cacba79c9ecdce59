// Package testutil provides in-memory core fixtures shared by tests.
package testutil

import (
	"fmt"

	"github.com/roach88/hexcore/internal/model"
)

// Case1 handles, in arena order.
const (
	SecUOX model.SectionRef = iota
	SecPuOX
	SecPoison
	SecShieldAbove
	SecShieldBelow
	SecDummy
	SecCoolant
)

// ThreeSections builds a single-assembly core whose stack is
// (-2,-1), (-1,1), (1,2) with sections "a", "b" and "c".
func ThreeSections() *model.Core {
	c := model.NewCore("three", 1, 1.0)
	water := c.AddMaterial(model.Material{
		Name:     "water",
		Nuclides: []model.Nuclide{{Name: "H1", Density: 0.2, Temperature: 400}},
	})
	region := []model.Layer{{Size: 1.0, Material: water}}

	a := c.AddSection(model.Section{Name: "a", Method: model.EquivHomogeneous, Regions: region, Partner: model.NoSection})
	b := c.AddSection(model.Section{Name: "b", Method: model.EquivHomogeneous, Regions: region, Partner: model.NoSection})
	s := c.AddSection(model.Section{Name: "c", Method: model.EquivHomogeneous, Regions: region, Partner: model.NoSection})
	c.Coolant = c.AddSection(model.Section{Name: "coolant", Method: model.EquivHomogeneous, Regions: region, Partner: model.NoSection})

	asm := c.AddAssembly(model.Assembly{
		Type:     "fuel",
		Location: "01A01",
		Stack: []model.Placement{
			{Section: a, Bounds: model.Bound{Lower: -2, Upper: -1}},
			{Section: b, Bounds: model.Bound{Lower: -1, Upper: 1}},
			{Section: s, Bounds: model.Bound{Lower: 1, Upper: 2}},
		},
	})
	if err := c.AppendRing(asm); err != nil {
		panic(err)
	}
	return c
}

// Case1 builds a three-ring core: a supercell control assembly in the
// center, alternating UOX/PuOX drivers in ring 2 and dummies in ring 3.
// Shield blocks above and below are distinct sections sharing one name.
func Case1() *model.Core {
	c := model.NewCore("case1", 3, 5.8929)

	uo2 := c.AddMaterial(model.Material{Name: "UO2", Nuclides: []model.Nuclide{
		{Name: "U238", Density: 0.25, Temperature: 616.0},
		{Name: "O16", Density: 0.5, Temperature: 616.0},
	}})
	puo2 := c.AddMaterial(model.Material{Name: "PuO2", Nuclides: []model.Nuclide{
		{Name: "Pu239", Density: 0.25, Temperature: 616.0},
		{Name: "O16", Density: 0.5, Temperature: 616.0},
	}})
	water := c.AddMaterial(model.Material{Name: "water", Nuclides: []model.Nuclide{
		{Name: "H1", Density: 0.2, Temperature: 400.0},
		{Name: "O16", Density: 0.1, Temperature: 400.0},
	}})
	b4c := c.AddMaterial(model.Material{Name: "B4C", Nuclides: []model.Nuclide{
		{Name: "B10", Density: 0.4, Temperature: 616.0},
		{Name: "C12", Density: 0.1, Temperature: 616.0},
	}})
	zirc := c.AddMaterial(model.Material{Name: "zircaloy", Nuclides: []model.Nuclide{
		{Name: "Zr91", Density: 0.9, Temperature: 550.0},
	}})
	ss304 := c.AddMaterial(model.Material{Name: "SS304", Nuclides: []model.Nuclide{
		{Name: "Fe56", Density: 0.56, Temperature: 515.0},
		{Name: "C12", Density: 0.04, Temperature: 515.0},
	}})

	slug := func(name string, method model.EquivMethod, rings int, fuel model.MaterialRef) model.Section {
		return model.Section{
			Name:     name,
			Method:   method,
			RodRings: rings,
			RodPitch: 0.5665,
			Rods:     []model.Layer{{Size: 0.3302, Material: fuel}, {Size: 0.3810, Material: zirc}},
			Regions: []model.Layer{
				{Size: 0.4591, Material: water},
				{Size: 5.8166, Material: ss304},
				{Size: 5.8929, Material: water},
			},
			Partner: model.NoSection,
		}
	}
	block := func(name string) model.Section {
		return model.Section{
			Name:    name,
			Method:  model.EquivHomogeneous,
			Regions: []model.Layer{{Size: 5.8166, Material: ss304}, {Size: 5.8929, Material: water}},
			Partner: model.NoSection,
		}
	}

	uox := c.AddSection(slug("UOX slug", model.Equiv1D, 6, uo2))
	puox := c.AddSection(slug("PuOX slug", model.Equiv1D, 6, puo2))
	poison := slug("poison slug", model.EquivSupercell, 3, b4c)
	poison.Partner = uox
	poisonRef := c.AddSection(poison)
	above := c.AddSection(block("shield block"))
	below := c.AddSection(block("shield block"))
	dummy := c.AddSection(block("dummy slug"))
	c.Coolant = c.AddSection(model.Section{
		Name:    "coolant",
		Method:  model.EquivHomogeneous,
		Regions: []model.Layer{{Size: 5.8929, Material: water}},
		Partner: model.NoSection,
	})

	lower := model.Placement{Section: below, Bounds: model.Bound{Lower: -2, Upper: -1}}
	upper := model.Placement{Section: above, Bounds: model.Bound{Lower: 1, Upper: 2}}
	middle := func(ref model.SectionRef) model.Placement {
		return model.Placement{Section: ref, Bounds: model.Bound{Lower: -1, Upper: 1}}
	}

	control := c.AddAssembly(model.Assembly{
		Type:     "control",
		Location: "01A01",
		Stack:    []model.Placement{lower, middle(poisonRef), upper},
	})
	must(c.AppendRing(control))

	var ring2 []model.AssemblyRef
	for k := 0; k < 6; k++ {
		fuel := uox
		if k%2 == 1 {
			fuel = puox
		}
		ring2 = append(ring2, c.AddAssembly(model.Assembly{
			Type:     "driver",
			Location: fmt.Sprintf("02A%02d", k),
			Stack:    []model.Placement{lower, upper, middle(fuel)},
		}))
	}
	must(c.AppendRing(ring2...))

	var ring3 []model.AssemblyRef
	for k := 0; k < 12; k++ {
		ring3 = append(ring3, c.AddAssembly(model.Assembly{
			Type:     "dummy",
			Location: fmt.Sprintf("03A%02d", k),
			Stack:    []model.Placement{lower, middle(dummy), upper},
		}))
	}
	must(c.AppendRing(ring3...))

	return c
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
