// Package hexlattice maps (ring, clock) lattice coordinates of a hexagonal
// core to Cartesian positions and defines the row traversal used to write
// the lattice block of a core deck.
//
// Ring 0 is the central slot. Ring r >= 1 holds 6r slots numbered
// clockwise, starting at the 60 degree (upper-right) corner. Each ring is
// split into six sides (sectors) of r slots; a slot's seat is its offset
// along its side.
package hexlattice

import (
	"fmt"
	"math"

	"github.com/roach88/hexcore/internal/model"
)

// Coord is a lattice coordinate.
type Coord = model.Coordinate

// RingSize returns the number of slots in ring r.
func RingSize(r int) int {
	if r == 0 {
		return 1
	}
	return 6 * r
}

// SlotCount returns the number of slots in a lattice of the given rings.
func SlotCount(rings int) int {
	if rings <= 0 {
		return 0
	}
	return 3*rings*(rings-1) + 1
}

// ToCartesian returns the center of the slot at c for the given pitch.
func ToCartesian(c Coord, pitch float64) (x, y float64) {
	if c.Ring == 0 {
		return 0, 0
	}
	sector := c.Clock / c.Ring
	seat := c.Clock % c.Ring

	// First seat of the sector, clockwise.
	angle := float64(1-sector) * math.Pi / 3
	radius := float64(c.Ring) * pitch
	x = radius * math.Cos(angle)
	y = radius * math.Sin(angle)

	angle -= 2 * math.Pi / 3
	distance := float64(seat) * pitch
	x += distance * math.Cos(angle)
	y += distance * math.Sin(angle)
	return x, y
}

// Axial is an integer hexagonal coordinate on the basis
// e1 = (1, 0) and e2 = (1/2, sqrt(3)/2), in units of pitch.
type Axial struct {
	A, B int
}

// corners[s] is the unit step toward the first seat of sector s.
var corners = [6]Axial{
	{0, 1},  // 60 degrees
	{1, 0},  // 0 degrees
	{1, -1}, // -60 degrees
	{0, -1}, // -120 degrees
	{-1, 0}, // 180 degrees
	{-1, 1}, // 120 degrees
}

func (a Axial) add(o Axial, n int) Axial {
	return Axial{A: a.A + n*o.A, B: a.B + n*o.B}
}

// Distance returns the ring of the axial coordinate.
func (a Axial) Distance() int {
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}
	return (abs(a.A) + abs(a.B) + abs(a.A+a.B)) / 2
}

// Cartesian returns the position of the axial coordinate.
func (a Axial) Cartesian(pitch float64) (x, y float64) {
	return pitch * (float64(a.A) + float64(a.B)/2), pitch * float64(a.B) * math.Sqrt(3) / 2
}

// ToAxial converts a lattice coordinate to an axial coordinate.
func ToAxial(c Coord) Axial {
	if c.Ring == 0 {
		return Axial{}
	}
	sector := c.Clock / c.Ring
	seat := c.Clock % c.Ring
	return Axial{}.add(corners[sector], c.Ring).add(corners[(sector+2)%6], seat)
}

// FromAxial converts an axial coordinate to a lattice coordinate. The sector
// follows from the signs of A and B; the seat is the offset from the
// sector's first slot.
func FromAxial(a Axial) Coord {
	r := a.Distance()
	if r == 0 {
		return Coord{}
	}
	var sector, seat int
	switch {
	case a.A >= 0 && a.B > 0:
		sector, seat = 0, a.A
	case a.A > 0 && a.B <= 0:
		if a.A == r && a.B > -r {
			sector, seat = 1, -a.B
		} else {
			sector, seat = 2, r-a.A
		}
	case a.A <= 0 && a.B < 0:
		sector, seat = 3, -a.A
	default:
		if a.B == r {
			sector, seat = 5, a.A+r
		} else {
			sector, seat = 4, a.B
		}
	}
	return Coord{Ring: r, Clock: sector*r + seat}
}

// FromCartesian returns the lattice coordinate whose center is at (x, y).
// It fails if the point is farther than 1e-6 pitch from any slot center.
func FromCartesian(x, y, pitch float64) (Coord, error) {
	if !(pitch > 0) || math.IsInf(pitch, 1) {
		return Coord{}, fmt.Errorf("pitch must be finite and > 0, got %g", pitch)
	}
	if !finite(x) || !finite(y) {
		return Coord{}, fmt.Errorf("point (%g, %g) is not finite", x, y)
	}
	b := y / (pitch * math.Sqrt(3) / 2)
	a := x/pitch - b/2
	ax := Axial{A: int(math.Round(a)), B: int(math.Round(b))}
	cx, cy := ax.Cartesian(pitch)
	if math.Hypot(cx-x, cy-y) > 1e-6*pitch {
		return Coord{}, fmt.Errorf("point (%g, %g) is not a lattice slot center", x, y)
	}
	return FromAxial(ax), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Rotate turns a coordinate by steps sixths of a full turn clockwise.
// Negative steps rotate counterclockwise.
func Rotate(c Coord, steps int) Coord {
	if c.Ring == 0 {
		return c
	}
	n := 6 * c.Ring
	k := (c.Clock + steps*c.Ring) % n
	if k < 0 {
		k += n
	}
	return Coord{Ring: c.Ring, Clock: k}
}
