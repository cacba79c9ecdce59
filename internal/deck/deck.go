// Package deck serializes a completed core into the two solver decks:
//
//   - the cross-section deck (RenderXS): section geometry and material
//     nuclide tables for the cross-section generator
//   - the core deck (RenderCore): control and method options, the axial
//     layers, one FA_type line per assembly and the hexagonal lattice
//
// Both refuse a core whose canonical IDs are stale. The core deck also needs
// the global mesh. Neither writes a timestamp, so identical input produces
// identical bytes.
package deck

import (
	"fmt"
	"strings"

	"github.com/roach88/hexcore/internal/runlength"
)

// Program is written in the header comment of every deck.
const Program = "hexcore"

const indent = "    "

// builder accumulates deck lines.
type builder struct {
	strings.Builder
}

func (b *builder) line(s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}

func (b *builder) linef(format string, args ...any) {
	fmt.Fprintf(&b.Builder, format, args...)
	b.WriteByte('\n')
}

// gap separates blocks with two empty lines.
func (b *builder) gap() {
	b.WriteString("\n\n")
}

func (b *builder) banner(width int, title string) {
	bar := strings.Repeat("=", width)
	b.linef("! %s %s %s", bar, title, bar)
}

func (b *builder) header(name string) {
	b.linef("! This file is generated by %s.", Program)
	b.linef("! CASENAME: %s", name)
	b.gap()
}

// text returns the deck with exactly one trailing newline.
func (b *builder) text() string {
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatHeight formats one axial layer height.
func FormatHeight(h float64) string {
	return fmt.Sprintf("%.4f", h)
}

// LayerLine formats the axial layer keyword of the core deck. Heights are
// compared after formatting, so layers equal to four decimals share a run.
func LayerLine(heights []float64) string {
	formatted := make([]string, len(heights))
	for i, h := range heights {
		formatted[i] = FormatHeight(h)
	}
	return LayerLineTokens(len(heights), runlength.Encode(formatted))
}

// LayerLineTokens formats the layer keyword from an already compressed
// record of formatted heights.
func LayerLineTokens(count int, rec runlength.Record[string]) string {
	return fmt.Sprintf("%-16s%-16d%-16s", "layer", count, rec.Join(identity))
}

// AssemblyLine formats the FA_type keyword of one assembly.
func AssemblyLine(id int, rec runlength.Record[int]) string {
	return fmt.Sprintf("%-16s%-16d%s", "FA_type", id, rec.Join(runlength.FormatInt))
}

func identity(s string) string { return s }

func boolFlag(v bool) string {
	if v {
		return "T"
	}
	return "F"
}
