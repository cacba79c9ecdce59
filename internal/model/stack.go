package model

import "fmt"

// StackByHeight computes contiguous bounds for sections given their heights,
// bottom to top, relative to a reference plane.
//
// The reference plane lies bias above the lower bound of heights[ref].
// Sections below ref stack downward from it, sections from ref upward.
func StackByHeight(heights []float64, ref int, bias float64) ([]Bound, error) {
	if ref < 0 || ref >= len(heights) {
		return nil, fmt.Errorf("reference section index %d out of range [0, %d)", ref, len(heights))
	}
	for i, h := range heights {
		if h <= 0 {
			return nil, fmt.Errorf("section %d: height must be > 0, got %g", i, h)
		}
	}

	sum := func(hs []float64) float64 {
		var total float64
		for _, h := range hs {
			total += h
		}
		return total
	}

	bounds := make([]Bound, len(heights))
	for i := range heights {
		if i < ref {
			bounds[i] = Bound{
				Lower: -sum(heights[i:ref]) - bias,
				Upper: -sum(heights[i+1:ref]) - bias,
			}
		} else {
			bounds[i] = Bound{
				Lower: sum(heights[ref:i]) - bias,
				Upper: sum(heights[ref:i+1]) - bias,
			}
		}
	}
	return bounds, nil
}
