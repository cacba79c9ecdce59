package canon

import (
	"sort"

	"github.com/roach88/hexcore/internal/model"
)

// Assignment lists the entities reachable from the lattice in canonical
// order; the entity at index i has ID i+1.
type Assignment struct {
	Assemblies []model.AssemblyRef
	Sections   []model.SectionRef
	Materials  []model.MaterialRef
}

// Collect gathers every assembly, section and material reachable from the
// lattice, deduplicated by handle and sorted canonically. It does not write
// IDs.
//
// Supercell partners are collected even though they are not placed
// themselves, and the coolant filler is always included.
func Collect(c *model.Core) Assignment {
	assemblies := make(map[model.AssemblyRef]bool)
	sections := make(map[model.SectionRef]bool)
	materials := make(map[model.MaterialRef]bool)

	addSection := func(ref model.SectionRef) {
		if !c.HasSection(ref) {
			return
		}
		sections[ref] = true
		for _, m := range c.Section(ref).Materials() {
			materials[m] = true
		}
	}

	c.Placed(func(_ model.Coordinate, ref model.AssemblyRef) {
		assemblies[ref] = true
		for _, p := range c.Assembly(ref).Stack {
			s := c.Section(p.Section)
			if s.Method == model.EquivSupercell {
				addSection(s.Partner)
			}
			addSection(p.Section)
		}
	})
	addSection(c.Coolant)

	var out Assignment
	out.Assemblies = sortedKeys(assemblies, func(ref model.AssemblyRef) string {
		return c.Assembly(ref).Location
	})
	out.Sections = sortedKeys(sections, func(ref model.SectionRef) string {
		return c.Section(ref).SortKey()
	})
	out.Materials = sortedKeys(materials, func(ref model.MaterialRef) string {
		return c.Material(ref).Name
	})
	return out
}

// Assign replaces every canonical ID in c. Entities no longer reachable from
// the lattice are reset to 0. The core is marked completed.
func Assign(c *model.Core) Assignment {
	c.Invalidate()
	a := Collect(c)
	for i, ref := range a.Assemblies {
		c.Assembly(ref).ID = i + 1
	}
	for i, ref := range a.Sections {
		c.Section(ref).ID = i + 1
	}
	for i, ref := range a.Materials {
		c.Material(ref).ID = i + 1
	}
	c.MarkCompleted()
	return a
}

// sortedKeys orders handles by key, breaking ties by handle.
func sortedKeys[R ~int](set map[R]bool, key func(R) string) []R {
	refs := make([]R, 0, len(set))
	for ref := range set {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	sort.SliceStable(refs, func(i, j int) bool { return key(refs[i]) < key(refs[j]) })
	return refs
}
