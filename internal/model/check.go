package model

import (
	"fmt"
	"sort"
)

// Check verifies the structure of the core.
//
// Consistency problems (ring counts, stack discontinuities, rod ring
// mismatches) are returned as diagnostics and do not stop compilation.
// Dangling handles and missing supercell partners are structural errors.
//
// Check sorts every placed assembly's stack by lower bound.
func (c *Core) Check() ([]Diagnostic, error) {
	var diags []Diagnostic

	if !c.HasSection(c.Coolant) {
		return nil, &CoreError{Code: ErrCodeDanglingRef, Message: "coolant section is not set", Subject: c.Name}
	}

	if c.Rings != len(c.Lattice) {
		diags = append(diags, Diagnostic{
			Code:    WarnLatticeRings,
			Subject: c.Name,
			Message: fmt.Sprintf("lattice mismatches ring number of core: now %d, ref %d", len(c.Lattice), c.Rings),
		})
	}

	seen := make(map[SectionRef]bool)
	for r, ring := range c.Lattice {
		want := 1
		if r > 0 {
			want = 6 * r
		}
		got := 0
		for _, ref := range ring {
			if ref != NoAssembly {
				got++
			}
		}
		if got != want {
			diags = append(diags, Diagnostic{
				Code:    WarnRingSize,
				Subject: fmt.Sprintf("ring %d", r+1),
				Message: fmt.Sprintf("lattice mismatches hexagonal lattice: now %d, ref %d", got, want),
			})
		}

		for k, ref := range ring {
			if ref == NoAssembly {
				continue
			}
			if !c.HasAssembly(ref) {
				return nil, &CoreError{Code: ErrCodeDanglingRef, Message: fmt.Sprintf("assembly handle %d out of range", ref), Subject: Coordinate{r, k}.String()}
			}
			a := c.Assembly(ref)
			for _, p := range a.Stack {
				if err := c.checkSection(p.Section, a.Location); err != nil {
					return nil, err
				}
				seen[p.Section] = true
			}
			diags = append(diags, c.checkStack(a)...)
		}
	}

	refs := make([]SectionRef, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	for _, ref := range refs {
		s := c.Section(ref)
		if len(s.Rods) > 0 && s.RodRings != len(s.Rods) {
			diags = append(diags, Diagnostic{
				Code:    WarnRodRingMismatch,
				Subject: s.Name,
				Message: fmt.Sprintf("mismatch of ring number %d and rod number %d", s.RodRings, len(s.Rods)),
			})
		}
	}

	return diags, nil
}

func (c *Core) checkSection(ref SectionRef, location string) error {
	if !c.HasSection(ref) {
		return &CoreError{Code: ErrCodeDanglingRef, Message: fmt.Sprintf("section handle %d out of range", ref), Subject: location}
	}
	s := c.Section(ref)
	if s.Method == EquivSupercell && !c.HasSection(s.Partner) {
		return &CoreError{Code: ErrCodeDanglingRef, Message: "supercell section has no partner", Subject: s.Name}
	}
	for _, m := range s.Materials() {
		if !c.HasMaterial(m) {
			return &CoreError{Code: ErrCodeDanglingRef, Message: fmt.Sprintf("material handle %d out of range", m), Subject: s.Name}
		}
	}
	return nil
}

// checkStack sorts the stack and reports every section whose lower bound
// does not equal its predecessor's upper bound.
func (c *Core) checkStack(a *Assembly) []Diagnostic {
	sort.SliceStable(a.Stack, func(i, j int) bool {
		return a.Stack[i].Bounds.Lower < a.Stack[j].Bounds.Lower
	})

	var diags []Diagnostic
	for i := 1; i < len(a.Stack); i++ {
		if a.Stack[i].Bounds.Lower != a.Stack[i-1].Bounds.Upper {
			diags = append(diags, Diagnostic{
				Code:    WarnStackGap,
				Subject: a.Location,
				Message: fmt.Sprintf("section [%s] does not match its previous one", c.Section(a.Stack[i].Section).Name),
			})
		}
	}
	return diags
}
