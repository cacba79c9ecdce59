// Package build runs the compile pipeline over an in-memory core: structural
// check, canonical ID assignment, mesh unification, deck rendering and
// fingerprinting.
package build

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/config"
	"github.com/roach88/hexcore/internal/deck"
	"github.com/roach88/hexcore/internal/mesh"
	"github.com/roach88/hexcore/internal/model"
)

// Deck file names written by Write.
const (
	XSFile   = "xs.inp"
	CoreFile = "core.inp"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Case        string
	Diagnostics []model.Diagnostic
	Assignment  canon.Assignment
	IDs         map[string][]canon.Entry
	Mesh        []float64

	XS       string
	Core     string
	XSHash   string
	CoreHash string

	Manifest    map[string]any
	Fingerprint string
}

// Run compiles c in place. Consistency warnings are logged and collected;
// structural errors stop the run.
func Run(c *model.Core, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	diags, err := c.Check()
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}

	assignment := canon.Assign(c)

	unified, err := mesh.Unify(c, cfg.Mesh.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("unify mesh: %w", err)
	}
	diags = append(diags, unified.Diagnostics()...)

	for _, d := range diags {
		logger.Warn("consistency warning",
			"code", d.Code,
			"subject", d.Subject,
			"message", d.Message)
	}

	xs, err := deck.RenderXS(c, cfg)
	if err != nil {
		return nil, fmt.Errorf("render cross-section deck: %w", err)
	}
	core, err := deck.RenderCore(c, cfg)
	if err != nil {
		return nil, fmt.Errorf("render core deck: %w", err)
	}

	manifest, err := canon.Manifest(c, assignment)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	fingerprint, err := canon.Fingerprint(c, assignment)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	result := &Result{
		Case:        c.Name,
		Diagnostics: diags,
		Assignment:  assignment,
		IDs:         canon.Entries(c, assignment),
		Mesh:        append([]float64(nil), c.Mesh...),
		XS:          xs,
		Core:        core,
		XSHash:      canon.DeckHash(xs),
		CoreHash:    canon.DeckHash(core),
		Manifest:    manifest,
		Fingerprint: fingerprint,
	}

	logger.Debug("build complete",
		"case", result.Case,
		"assemblies", len(assignment.Assemblies),
		"sections", len(assignment.Sections),
		"materials", len(assignment.Materials),
		"layers", max(len(result.Mesh)-1, 0),
		"fingerprint", result.Fingerprint)

	return result, nil
}

// Write stores both decks under dir, creating it if needed, and returns the
// paths written.
func (r *Result) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	files := []struct {
		name, text string
	}{
		{XSFile, r.XS},
		{CoreFile, r.Core},
	}
	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.text), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
