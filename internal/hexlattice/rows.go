package hexlattice

// Rows returns the lattice of the given ring count as 2*rings-1 rows, top
// to bottom, each ordered left to right.
//
// Row l lies d = |rings-1-l| rows away from the center line. Each row is
// assembled in fixed passes: the outer rings along the left diagonal from
// outside in, the innermost ring of the row along its horizontal side, the
// slot on the 60 (or 300) degree line, and the outer rings along the right
// diagonal from inside out.
func Rows(rings int) [][]Coord {
	if rings <= 0 {
		return nil
	}
	rows := make([][]Coord, 0, 2*rings-1)
	for l := 0; l < 2*rings-1; l++ {
		offset := rings - 1 - l
		d := offset
		if d < 0 {
			d = -d
		}
		sign := 0
		switch {
		case offset > 0:
			sign = 1
		case offset < 0:
			sign = -1
		}

		row := make([]Coord, 0, 2*rings-1-d)

		// Outer to inner ring, 120 to 240 degrees.
		for j := 0; j < rings-1-d; j++ {
			r := rings - 1 - j
			row = append(row, Coord{Ring: r, Clock: 5*r + j - l})
		}

		// Innermost ring of this row, 60 to 120 and 240 to 300 degrees.
		r := d
		center := 1
		if r > 0 {
			center = 4 * r
		}
		for j := 0; j < d; j++ {
			row = append(row, Coord{Ring: r, Clock: center + (r+j)*sign})
		}

		// The slot on the 60 or 300 degree line.
		k := 0
		if offset < 0 {
			k = 2 * d
		}
		row = append(row, Coord{Ring: r, Clock: k})

		// Inner to outer ring, 300 to 60 degrees.
		for j := 0; j < rings-1-d; j++ {
			r := 1 + j + d
			row = append(row, Coord{Ring: r, Clock: l + r + 1 - rings})
		}

		rows = append(rows, row)
	}
	return rows
}

// Traverse returns every slot in row order.
func Traverse(rings int) []Coord {
	var out []Coord
	for _, row := range Rows(rings) {
		out = append(out, row...)
	}
	return out
}
