package model

import "fmt"

// Core is a hexagonal core: the entity arena, the lattice of placed
// assemblies and the derived state (canonical IDs, global mesh).
//
// Core assumes exclusive ownership by one caller; it is not safe for
// concurrent use.
type Core struct {
	Name  string
	Rings int     // declared ring count
	Pitch float64 // assembly lattice pitch

	// Coolant is the filler section used below and above every assembly.
	Coolant SectionRef

	Materials  []Material
	Sections   []Section
	Assemblies []Assembly

	// Lattice[r][k] is the assembly at (r, k), or NoAssembly.
	Lattice [][]AssemblyRef

	// Mesh is the global axial mesh, strictly increasing. Empty until meshed.
	Mesh []float64

	// CoolantBounds spans the whole mesh once the core is meshed.
	CoolantBounds Bound

	completed bool
}

// NewCore creates an empty core.
func NewCore(name string, rings int, pitch float64) *Core {
	return &Core{
		Name:    name,
		Rings:   rings,
		Pitch:   pitch,
		Coolant: NoSection,
	}
}

// AddMaterial appends a material to the arena and returns its handle.
func (c *Core) AddMaterial(m Material) MaterialRef {
	m.ID = 0
	c.Materials = append(c.Materials, m)
	return MaterialRef(len(c.Materials) - 1)
}

// AddSection appends a section definition to the arena and returns its handle.
func (c *Core) AddSection(s Section) SectionRef {
	s.ID = 0
	c.Sections = append(c.Sections, s)
	return SectionRef(len(c.Sections) - 1)
}

// AddAssembly appends an assembly to the arena and returns its handle.
// The assembly is not part of the lattice until it is placed.
func (c *Core) AddAssembly(a Assembly) AssemblyRef {
	a.ID = 0
	a.Stack = append([]Placement(nil), a.Stack...)
	c.Assemblies = append(c.Assemblies, a)
	return AssemblyRef(len(c.Assemblies) - 1)
}

// Material returns the material for ref.
func (c *Core) Material(ref MaterialRef) *Material {
	return &c.Materials[ref]
}

// Section returns the section for ref.
func (c *Core) Section(ref SectionRef) *Section {
	return &c.Sections[ref]
}

// Assembly returns the assembly for ref.
func (c *Core) Assembly(ref AssemblyRef) *Assembly {
	return &c.Assemblies[ref]
}

// HasMaterial reports whether ref is a valid material handle.
func (c *Core) HasMaterial(ref MaterialRef) bool {
	return ref >= 0 && int(ref) < len(c.Materials)
}

// HasSection reports whether ref is a valid section handle.
func (c *Core) HasSection(ref SectionRef) bool {
	return ref >= 0 && int(ref) < len(c.Sections)
}

// HasAssembly reports whether ref is a valid assembly handle.
func (c *Core) HasAssembly(ref AssemblyRef) bool {
	return ref >= 0 && int(ref) < len(c.Assemblies)
}

// Place puts an assembly at a lattice coordinate, growing the lattice as
// needed. Canonical IDs and the mesh are invalidated.
func (c *Core) Place(coord Coordinate, ref AssemblyRef) error {
	if !coord.Valid() {
		return &CoreError{Code: ErrCodeInvalidCoordinate, Message: "invalid lattice coordinate", Subject: coord.String()}
	}
	if !c.HasAssembly(ref) {
		return &CoreError{Code: ErrCodeDanglingRef, Message: fmt.Sprintf("assembly handle %d out of range", ref), Subject: coord.String()}
	}
	for len(c.Lattice) <= coord.Ring {
		c.Lattice = append(c.Lattice, nil)
	}
	ring := c.Lattice[coord.Ring]
	for len(ring) <= coord.Clock {
		ring = append(ring, NoAssembly)
	}
	ring[coord.Clock] = ref
	c.Lattice[coord.Ring] = ring
	c.Assemblies[ref].Coord = coord
	c.latticeChanged()
	return nil
}

// AppendRing adds a full ring of assemblies in clock order, starting at the
// 60 degree (upper-right) position.
func (c *Core) AppendRing(refs ...AssemblyRef) error {
	r := len(c.Lattice)
	c.Lattice = append(c.Lattice, nil)
	for k, ref := range refs {
		if err := c.Place(Coordinate{Ring: r, Clock: k}, ref); err != nil {
			c.Lattice = c.Lattice[:r]
			return err
		}
	}
	c.latticeChanged()
	return nil
}

// Unplace empties a lattice slot. Trailing empty slots and rings are trimmed
// so that placing and then unplacing restores the previous lattice.
func (c *Core) Unplace(coord Coordinate) {
	if coord.Ring < 0 || coord.Clock < 0 || coord.Ring >= len(c.Lattice) || coord.Clock >= len(c.Lattice[coord.Ring]) {
		return
	}
	ring := c.Lattice[coord.Ring]
	ring[coord.Clock] = NoAssembly
	for len(ring) > 0 && ring[len(ring)-1] == NoAssembly {
		ring = ring[:len(ring)-1]
	}
	c.Lattice[coord.Ring] = ring
	for len(c.Lattice) > 0 && len(c.Lattice[len(c.Lattice)-1]) == 0 {
		c.Lattice = c.Lattice[:len(c.Lattice)-1]
	}
	c.latticeChanged()
}

// At returns the assembly placed at coord, or NoAssembly.
func (c *Core) At(coord Coordinate) AssemblyRef {
	if coord.Ring < 0 || coord.Ring >= len(c.Lattice) {
		return NoAssembly
	}
	ring := c.Lattice[coord.Ring]
	if coord.Clock < 0 || coord.Clock >= len(ring) {
		return NoAssembly
	}
	return ring[coord.Clock]
}

// Placed calls fn for every occupied lattice slot in ring-major order.
func (c *Core) Placed(fn func(coord Coordinate, ref AssemblyRef)) {
	for r, ring := range c.Lattice {
		for k, ref := range ring {
			if ref == NoAssembly {
				continue
			}
			fn(Coordinate{Ring: r, Clock: k}, ref)
		}
	}
}

// Invalidate resets canonical IDs and marks the core incomplete.
func (c *Core) Invalidate() {
	for i := range c.Materials {
		c.Materials[i].ID = 0
	}
	for i := range c.Sections {
		c.Sections[i].ID = 0
	}
	for i := range c.Assemblies {
		c.Assemblies[i].ID = 0
	}
	c.completed = false
}

// latticeChanged drops canonical IDs and the mesh; the core must be
// completed and meshed again before rendering.
func (c *Core) latticeChanged() {
	c.Invalidate()
	c.Mesh = nil
	c.CoolantBounds = Bound{}
}

// MarkCompleted records that canonical IDs are current.
func (c *Core) MarkCompleted() {
	c.completed = true
}

// Completed reports whether canonical IDs are current.
func (c *Core) Completed() bool {
	return c.completed
}

// Meshed reports whether a global mesh has been built.
func (c *Core) Meshed() bool {
	return len(c.Mesh) >= 2
}

// Cells returns the number of mesh cells.
func (c *Core) Cells() int {
	if len(c.Mesh) < 2 {
		return 0
	}
	return len(c.Mesh) - 1
}

// RequireCompleted returns a structural error unless IDs are current.
func (c *Core) RequireCompleted() error {
	if !c.completed {
		return &CoreError{Code: ErrCodeNotCompleted, Message: "core has not been completed; assign canonical IDs first", Subject: c.Name}
	}
	return nil
}

// RequireMeshed returns a structural error unless the mesh has been built.
func (c *Core) RequireMeshed() error {
	if !c.Meshed() {
		return &CoreError{Code: ErrCodeNotMeshed, Message: "core has not been meshed", Subject: c.Name}
	}
	return nil
}
