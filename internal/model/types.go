package model

import "fmt"

// MaterialRef is a handle into Core.Materials.
type MaterialRef int

// SectionRef is a handle into Core.Sections.
type SectionRef int

// AssemblyRef is a handle into Core.Assemblies.
type AssemblyRef int

// Sentinel handles for "no entity".
const (
	NoMaterial MaterialRef = -1
	NoSection  SectionRef  = -1
	NoAssembly AssemblyRef = -1
)

// EquivMethod is the cross-section equivalence method of a section.
type EquivMethod string

const (
	EquivHomogeneous EquivMethod = "homo"
	Equiv1D          EquivMethod = "1-D"
	EquivSupercell   EquivMethod = "supercell"
)

// ValidEquivMethods defines the allowed equivalence methods.
var ValidEquivMethods = map[EquivMethod]bool{
	EquivHomogeneous: true,
	Equiv1D:          true,
	EquivSupercell:   true,
}

// GeomKind returns the numeric geometry kind written to the cross-section deck.
func (m EquivMethod) GeomKind() (int, error) {
	switch m {
	case EquivHomogeneous:
		return 1, nil
	case Equiv1D:
		return 2, nil
	case EquivSupercell:
		return 3, nil
	default:
		return 0, &CoreError{
			Code:    ErrCodeInvalidGeomKind,
			Message: fmt.Sprintf("incorrect equivalence method %q", string(m)),
		}
	}
}

// Nuclide is one row of a material composition.
type Nuclide struct {
	Name        string  `json:"name"`
	Density     float64 `json:"density"`     // atom/(barn*cm)
	Temperature float64 `json:"temperature"` // K
}

// LowDensityCutoff is the density below which nuclides are dropped from
// serialized material tables.
const LowDensityCutoff = 1e-15

// Material is a named nuclide composition.
type Material struct {
	Name     string
	ID       int // 0 until canonical IDs are assigned
	Nuclides []Nuclide

	// KeepLowDensity disables the LowDensityCutoff filter.
	KeepLowDensity bool
}

// ActiveNuclides returns the nuclides that survive the low-density filter.
func (m *Material) ActiveNuclides() []Nuclide {
	if m.KeepLowDensity {
		return m.Nuclides
	}
	out := make([]Nuclide, 0, len(m.Nuclides))
	for _, n := range m.Nuclides {
		if n.Density >= LowDensityCutoff {
			out = append(out, n)
		}
	}
	return out
}

// Layer is one rod ring or hexagonal region of a section: a characteristic
// size and the material filling it.
type Layer struct {
	Size     float64
	Material MaterialRef
}

// Section is a radial cross-section definition.
type Section struct {
	Name     string
	ID       int // 0 until canonical IDs are assigned
	Method   EquivMethod
	RodRings int     // number of rod rings, 0 when the section has no rods
	RodPitch float64 // rod lattice pitch
	Rods     []Layer
	Regions  []Layer

	// Partner is the neighboring section of a supercell calculation.
	// Only meaningful when Method is EquivSupercell.
	Partner SectionRef
}

// SortKey is the canonical ordering key of a section.
func (s *Section) SortKey() string {
	return string(s.Method) + " " + s.Name
}

// Materials returns every material referenced by the rods and regions, in
// declaration order, duplicates included.
func (s *Section) Materials() []MaterialRef {
	refs := make([]MaterialRef, 0, len(s.Rods)+len(s.Regions))
	for _, l := range s.Rods {
		refs = append(refs, l.Material)
	}
	for _, l := range s.Regions {
		refs = append(refs, l.Material)
	}
	return refs
}

// Bound is an axial interval [Lower, Upper].
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Valid reports whether Lower < Upper.
func (b Bound) Valid() bool {
	return b.Lower < b.Upper
}

// Height returns Upper - Lower.
func (b Bound) Height() float64 {
	return b.Upper - b.Lower
}

// Contains reports whether [lower, upper] lies inside b.
func (b Bound) Contains(lower, upper float64) bool {
	return b.Lower <= lower && b.Upper >= upper
}

func (b Bound) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", b.Lower, b.Upper)
}

// Placement is one section placed in an assembly stack over an axial bound.
type Placement struct {
	Section SectionRef
	Bounds  Bound
}

// Coordinate is a (ring, clock) lattice position. Ring 0 has only clock 0;
// ring r >= 1 has clocks 0..6r-1.
type Coordinate struct {
	Ring  int `json:"ring"`
	Clock int `json:"clock"`
}

// Valid reports whether the coordinate names an existing lattice slot.
func (c Coordinate) Valid() bool {
	if c.Ring < 0 || c.Clock < 0 {
		return false
	}
	if c.Ring == 0 {
		return c.Clock == 0
	}
	return c.Clock < 6*c.Ring
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.Ring, c.Clock)
}

// Assembly is a vertical stack of placements at one lattice coordinate.
type Assembly struct {
	Type     string
	Location string
	ID       int // 0 until canonical IDs are assigned
	Stack    []Placement
	Coord    Coordinate
}

// Extent returns the lowest lower bound and highest upper bound of the stack.
// ok is false for an empty stack.
func (a *Assembly) Extent() (lower, upper float64, ok bool) {
	if len(a.Stack) == 0 {
		return 0, 0, false
	}
	lower, upper = a.Stack[0].Bounds.Lower, a.Stack[0].Bounds.Upper
	for _, p := range a.Stack[1:] {
		lower = min(lower, p.Bounds.Lower)
		upper = max(upper, p.Bounds.Upper)
	}
	return lower, upper, true
}
