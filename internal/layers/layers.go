// Package layers maps an assembly stack onto the global axial mesh.
//
// Each mesh cell is assigned the canonical ID of the section containing it,
// or the coolant filler ID when the cell lies below or above the stack. The
// per-cell sequence is stored run-length compressed.
package layers

import (
	"fmt"

	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/runlength"
)

// Encode returns the run-length record of section IDs for assembly ref.
//
// The core must be completed and meshed. A cell inside the stack extent
// that no section contains, or that more than one section contains, is a
// MALFORMED_BOUNDS error.
func Encode(c *model.Core, ref model.AssemblyRef) (runlength.Record[int], error) {
	if err := c.RequireCompleted(); err != nil {
		return nil, err
	}
	if err := c.RequireMeshed(); err != nil {
		return nil, err
	}
	if !c.HasAssembly(ref) {
		return nil, &model.CoreError{Code: model.ErrCodeDanglingRef, Message: fmt.Sprintf("assembly handle %d out of range", ref)}
	}

	a := c.Assembly(ref)
	coolant := c.Section(c.Coolant).ID
	lowest, highest, ok := a.Extent()

	var rec runlength.Record[int]
	for i := 0; i+1 < len(c.Mesh); i++ {
		lo, hi := c.Mesh[i], c.Mesh[i+1]

		if !ok || hi <= lowest || lo >= highest {
			rec.Append(coolant)
			continue
		}

		id, err := containing(c, a, lo, hi)
		if err != nil {
			return nil, err
		}
		rec.Append(id)
	}
	return rec, nil
}

// containing returns the ID of the single section whose bounds contain
// [lo, hi].
func containing(c *model.Core, a *model.Assembly, lo, hi float64) (int, error) {
	found := model.NoSection
	for _, p := range a.Stack {
		if !p.Bounds.Contains(lo, hi) {
			continue
		}
		if found != model.NoSection {
			return 0, &model.CoreError{
				Code:    model.ErrCodeMalformedBounds,
				Message: fmt.Sprintf("sections %q and %q overlap in cell %s", c.Section(found).Name, c.Section(p.Section).Name, model.Bound{Lower: lo, Upper: hi}),
				Subject: a.Location,
			}
		}
		found = p.Section
	}
	if found == model.NoSection {
		return 0, &model.CoreError{
			Code:    model.ErrCodeMalformedBounds,
			Message: fmt.Sprintf("no section contains cell %s", model.Bound{Lower: lo, Upper: hi}),
			Subject: a.Location,
		}
	}
	return c.Section(found).ID, nil
}

// Decode expands a record into one ID per mesh cell. The record must cover
// exactly cells cells.
func Decode(rec runlength.Record[int], cells int) ([]int, error) {
	if n := rec.Len(); n != cells {
		return nil, &model.CoreError{
			Code:    model.ErrCodeMalformedBounds,
			Message: fmt.Sprintf("record covers %d cells, mesh has %d", n, cells),
		}
	}
	return rec.Expand(), nil
}

// EncodeAll encodes every assembly of an assignment, indexed like
// assemblies.
func EncodeAll(c *model.Core, assemblies []model.AssemblyRef) ([]runlength.Record[int], error) {
	out := make([]runlength.Record[int], len(assemblies))
	for i, ref := range assemblies {
		rec, err := Encode(c, ref)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.Assembly(ref).Location, err)
		}
		out[i] = rec
	}
	return out, nil
}
