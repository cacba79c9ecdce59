package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/hexcore/internal/deck"
	"github.com/roach88/hexcore/internal/layers"
	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/runlength"
)

// evaluate dispatches one assertion against a successful build.
func evaluate(a Assertion, result *Result) error {
	switch a.Type {
	case AssertLayers:
		return assertLayers(a, result)
	case AssertCanonicalID:
		return assertCanonicalID(a, result)
	case AssertDeckContains:
		return assertDeckContains(a, result)
	case AssertLatticeRow:
		return assertLatticeRow(a, result)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertLayers(a Assertion, result *Result) error {
	c := result.core
	ref := model.NoAssembly
	c.Placed(func(_ model.Coordinate, r model.AssemblyRef) {
		if ref == model.NoAssembly && c.Assembly(r).Location == a.Location {
			ref = r
		}
	})
	if ref == model.NoAssembly {
		return fmt.Errorf("no assembly placed at location %q", a.Location)
	}

	rec, err := layers.Encode(c, ref)
	if err != nil {
		return err
	}
	if got := rec.Join(runlength.FormatInt); got != a.Record {
		return fmt.Errorf("location %s: expected layers %q, got %q", a.Location, a.Record, got)
	}
	return nil
}

func assertCanonicalID(a Assertion, result *Result) error {
	entries, ok := result.Build.IDs[a.Kind]
	if !ok {
		return fmt.Errorf("unknown kind %q", a.Kind)
	}
	var ids []int
	for _, e := range entries {
		if e.Key == a.Key {
			if e.ID == a.ID {
				return nil
			}
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no %s with key %q", a.Kind, a.Key)
	}
	return fmt.Errorf("%s %q: expected id %d, got %v", a.Kind, a.Key, a.ID, ids)
}

func assertDeckContains(a Assertion, result *Result) error {
	text := result.Build.XS
	if a.Deck == "core" {
		text = result.Build.Core
	}
	if !strings.Contains(text, a.Text) {
		return fmt.Errorf("%s deck does not contain %q", a.Deck, a.Text)
	}
	return nil
}

func assertLatticeRow(a Assertion, result *Result) error {
	rows, err := deck.LatticeRows(result.core)
	if err != nil {
		return err
	}
	if a.Row > len(rows) {
		return fmt.Errorf("row %d out of range, lattice has %d rows", a.Row, len(rows))
	}
	if got := rows[a.Row-1]; got != a.Text {
		return fmt.Errorf("row %d: expected %q, got %q", a.Row, a.Text, got)
	}
	return nil
}
