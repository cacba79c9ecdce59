// Package densify refines the axial mesh of a serialized core deck.
//
// Every layer taller than a threshold is split into equal sub-layers, and
// every FA_type run covering a split layer grows by the number of inserted
// sub-layers. Lines other than layer and FA_type are copied unchanged. The
// source deck is never modified; the result goes to a sibling directory.
package densify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/hexcore/internal/deck"
	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/runlength"
)

// Assembly is one parsed FA_type line.
type Assembly struct {
	Line   int // index into Deck.Lines
	ID     int
	Record runlength.Record[int]
}

// Deck is a parsed core deck.
type Deck struct {
	Lines      []string
	LayerLine  int
	Heights    []float64
	Assemblies []Assembly

	trailingNewline bool
}

// Parse reads a core deck. It must contain exactly one layer line, and
// every FA_type record must cover exactly the declared layers.
func Parse(r io.Reader) (*Deck, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	text := string(data)
	d := &Deck{LayerLine: -1, trailingNewline: strings.HasSuffix(text, "\n")}

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		idx := len(d.Lines)
		d.Lines = append(d.Lines, line)

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "layer":
			if d.LayerLine >= 0 {
				return nil, malformed(idx, "duplicate layer line")
			}
			heights, err := parseLayer(fields[1:])
			if err != nil {
				return nil, malformed(idx, err.Error())
			}
			d.LayerLine = idx
			d.Heights = heights
		case "FA_type":
			asm, err := parseAssembly(fields[1:])
			if err != nil {
				return nil, malformed(idx, err.Error())
			}
			asm.Line = idx
			d.Assemblies = append(d.Assemblies, asm)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan deck: %w", err)
	}

	if d.LayerLine < 0 {
		return nil, &model.CoreError{Code: model.ErrCodeMalformedDeck, Message: "deck has no layer line"}
	}
	for _, asm := range d.Assemblies {
		if n := asm.Record.Len(); n != len(d.Heights) {
			return nil, malformed(asm.Line, fmt.Sprintf("FA_type %d covers %d layers, deck has %d", asm.ID, n, len(d.Heights)))
		}
	}
	return d, nil
}

func parseLayer(fields []string) ([]float64, error) {
	if len(fields) == 0 {
		return nil, errors.New("layer count missing")
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid layer count %q", fields[0])
	}
	rec, err := runlength.ParseStrings(fields[1:])
	if err != nil {
		return nil, err
	}
	if n := rec.Len(); n != count {
		return nil, fmt.Errorf("layer count %d does not match %d heights", count, n)
	}
	heights := make([]float64, 0, count)
	for _, s := range rec.Expand() {
		h, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
			return nil, fmt.Errorf("invalid layer height %q", s)
		}
		heights = append(heights, h)
	}
	return heights, nil
}

func parseAssembly(fields []string) (Assembly, error) {
	if len(fields) == 0 {
		return Assembly{}, errors.New("FA_type id missing")
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Assembly{}, fmt.Errorf("invalid FA_type id %q", fields[0])
	}
	rec, err := runlength.ParseInts(fields[1:])
	if err != nil {
		return Assembly{}, err
	}
	return Assembly{ID: id, Record: rec}, nil
}

func malformed(line int, msg string) error {
	return &model.CoreError{
		Code:    model.ErrCodeMalformedDeck,
		Message: msg,
		Subject: fmt.Sprintf("line %d", line+1),
	}
}

// Split subdivides every height above threshold into ceil(h/threshold)
// equal sub-layers rounded to four decimals. extra[i] is the number of
// sub-layers added for heights[i].
func Split(heights []float64, threshold float64) (out []float64, extra []int, err error) {
	if !(threshold > 0) {
		return nil, nil, model.NewThresholdError(threshold)
	}
	extra = make([]int, len(heights))
	for i, h := range heights {
		if h <= threshold {
			out = append(out, h)
			continue
		}
		factor := int(math.Ceil(h / threshold))
		sub := math.Round(h/float64(factor)*1e4) / 1e4
		for j := 0; j < factor; j++ {
			out = append(out, sub)
		}
		extra[i] = factor - 1
	}
	return out, extra, nil
}

// Redistribute grows each run by the sub-layers inserted within its span.
// Sub-layers of one coarse layer share its ID, so no run is ever split.
func Redistribute(rec runlength.Record[int], extra []int) (runlength.Record[int], error) {
	if n := rec.Len(); n != len(extra) {
		return nil, &model.CoreError{
			Code:    model.ErrCodeMalformedDeck,
			Message: fmt.Sprintf("record covers %d layers, mesh has %d", n, len(extra)),
		}
	}
	var out runlength.Record[int]
	pos := 0
	for _, run := range rec {
		added := 0
		for _, e := range extra[pos : pos+run.Count] {
			added += e
		}
		pos += run.Count
		out.AppendRun(run.Count+added, run.Value)
	}
	return out, nil
}

// Densify returns the deck text with no layer taller than threshold.
func (d *Deck) Densify(threshold float64) (string, int, error) {
	heights, extra, err := Split(d.Heights, threshold)
	if err != nil {
		return "", 0, err
	}

	lines := append([]string(nil), d.Lines...)
	formatted := make([]string, len(heights))
	for i, h := range heights {
		formatted[i] = deck.FormatHeight(h)
	}
	lines[d.LayerLine] = deck.LayerLineTokens(len(heights), runlength.Encode(formatted))

	for _, asm := range d.Assemblies {
		rec, err := Redistribute(asm.Record, extra)
		if err != nil {
			return "", 0, fmt.Errorf("FA_type %d: %w", asm.ID, err)
		}
		lines[asm.Line] = deck.AssemblyLine(asm.ID, rec)
	}

	text := strings.Join(lines, "\n")
	if d.trailingNewline {
		text += "\n"
	}
	return text, len(heights), nil
}

// Report describes one densified deck.
type Report struct {
	Source       string `json:"source"`
	Output       string `json:"output"`
	LayersBefore int    `json:"layers_before"`
	LayersAfter  int    `json:"layers_after"`
}

func (r Report) String() string {
	return fmt.Sprintf("mesh densified from %d to %d layers, written to %s", r.LayersBefore, r.LayersAfter, r.Output)
}

// OutputPath returns the densified deck path for a source deck:
// <dir>/<stem>_mesh<threshold>/<base>. The threshold is written in its
// shortest exact form so distinct thresholds never share a directory.
func OutputPath(path string, threshold float64) string {
	dir, base := filepath.Split(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	suffix := strconv.FormatFloat(threshold, 'g', -1, 64)
	return filepath.Join(dir, stem+"_mesh"+suffix, base)
}

// File densifies the deck at path and writes the result to OutputPath.
func File(path string, threshold float64) (Report, error) {
	if !(threshold > 0) {
		return Report{}, model.NewThresholdError(threshold)
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Report{}, &model.CoreError{Code: model.ErrCodeMissingFile, Message: "deck does not exist", Subject: path}
	}
	if err != nil {
		return Report{}, fmt.Errorf("stat deck: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Report{}, &model.CoreError{Code: model.ErrCodeMissingFile, Message: "deck is not a regular file", Subject: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return Report{}, err
	}
	text, after, err := d.Densify(threshold)
	if err != nil {
		return Report{}, err
	}

	out := OutputPath(path, threshold)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Report{}, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return Report{}, fmt.Errorf("write densified deck: %w", err)
	}

	return Report{
		Source:       path,
		Output:       out,
		LayersBefore: len(d.Heights),
		LayersAfter:  after,
	}, nil
}
