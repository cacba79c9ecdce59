// Package mesh builds the global axial mesh of a core.
//
// Every placed section bound contributes a height. Heights closer than a
// tolerance are clustered and replaced by their mean; section bounds near a
// mesh height are then snapped onto it.
package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/hexcore/internal/model"
)

// Snap records one section bound moved onto the mesh.
type Snap struct {
	Location string  `json:"location"`
	Section  string  `json:"section"`
	Side     int     `json:"side"` // 0 lower, 1 upper
	From     float64 `json:"from"`
	To       float64 `json:"to"`
}

// Diagnostic converts the snap to a consistency warning.
func (s Snap) Diagnostic() model.Diagnostic {
	return model.Diagnostic{
		Code:    model.WarnBoundSnapped,
		Subject: s.Location,
		Message: fmt.Sprintf("bound %d %.4f of section (%s) approximated to %.4f", s.Side, s.From, s.Section, s.To),
	}
}

// Result is the outcome of Unify.
type Result struct {
	Mesh  []float64 `json:"mesh"`
	Snaps []Snap    `json:"snaps"`
}

// Diagnostics returns one warning per snapped bound.
func (r *Result) Diagnostics() []model.Diagnostic {
	out := make([]model.Diagnostic, len(r.Snaps))
	for i, s := range r.Snaps {
		out[i] = s.Diagnostic()
	}
	return out
}

// Cluster merges sorted distinct heights into mesh heights.
//
// Heights are scanned in ascending order. A height joins the current
// cluster when it lies within tol of both the cluster's minimum and
// maximum; otherwise the cluster is flushed as its arithmetic mean and a new
// cluster starts. A chain of small steps can therefore span more than tol in
// total only as long as every member stays within tol of both ends.
func Cluster(heights []float64, tol float64) ([]float64, error) {
	if !(tol > 0) {
		return nil, model.NewToleranceError(tol)
	}

	distinct := make([]float64, 0, len(heights))
	seen := make(map[float64]bool, len(heights))
	for _, h := range heights {
		if !seen[h] {
			seen[h] = true
			distinct = append(distinct, h)
		}
	}
	sort.Float64s(distinct)

	var mesh []float64
	var buf []float64
	flush := func() {
		if len(buf) == 0 {
			return
		}
		var sum float64
		for _, h := range buf {
			sum += h
		}
		mesh = append(mesh, sum/float64(len(buf)))
		buf = buf[:0]
	}

	for _, h := range distinct {
		if len(buf) == 0 {
			buf = append(buf, h)
			continue
		}
		// buf is ascending, so its ends are the cluster min and max.
		lower, upper := buf[0], buf[len(buf)-1]
		if math.Abs(h-lower) <= tol && math.Abs(h-upper) <= tol {
			buf = append(buf, h)
			continue
		}
		flush()
		buf = append(buf, h)
	}
	flush()

	return mesh, nil
}

// Heights collects every bound of every placed section, in lattice order.
// The coolant filler does not contribute.
func Heights(c *model.Core) []float64 {
	var heights []float64
	c.Placed(func(_ model.Coordinate, ref model.AssemblyRef) {
		for _, p := range c.Assembly(ref).Stack {
			heights = append(heights, p.Bounds.Lower, p.Bounds.Upper)
		}
	})
	return heights
}

// Unify rebuilds the global mesh of c, snaps placed section bounds onto it
// and stretches the coolant filler over the whole mesh.
//
// A bound exactly equal to a mesh height is left untouched. Each assembly is
// visited once even if it occupies several slots. The previous mesh is
// replaced, never extended.
func Unify(c *model.Core, tol float64) (*Result, error) {
	mesh, err := Cluster(Heights(c), tol)
	if err != nil {
		return nil, err
	}

	var refs []model.AssemblyRef
	visited := make(map[model.AssemblyRef]bool)
	c.Placed(func(_ model.Coordinate, ref model.AssemblyRef) {
		if !visited[ref] {
			visited[ref] = true
			refs = append(refs, ref)
		}
	})

	result := &Result{Mesh: mesh}
	for _, h := range mesh {
		for _, ref := range refs {
			a := c.Assembly(ref)
			for i := range a.Stack {
				p := &a.Stack[i]
				for side := 0; side < 2; side++ {
					bound := &p.Bounds.Lower
					if side == 1 {
						bound = &p.Bounds.Upper
					}
					d := math.Abs(h - *bound)
					if d > 0 && d <= tol {
						result.Snaps = append(result.Snaps, Snap{
							Location: a.Location,
							Section:  c.Section(p.Section).Name,
							Side:     side,
							From:     *bound,
							To:       h,
						})
						*bound = h
					}
				}
			}
		}
	}

	c.Mesh = mesh
	if len(mesh) > 0 {
		c.CoolantBounds = model.Bound{Lower: mesh[0], Upper: mesh[len(mesh)-1]}
	} else {
		c.CoolantBounds = model.Bound{}
	}
	return result, nil
}
