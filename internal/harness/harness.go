package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/hexcore/internal/build"
	"github.com/roach88/hexcore/internal/compiler"
	"github.com/roach88/hexcore/internal/config"
	"github.com/roach88/hexcore/internal/model"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when the build outcome and every assertion match.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Build is nil when the build failed.
	Build *build.Result `json:"-"`

	core *model.Core
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run compiles the scenario's core and checks its expectations.
//
// Compile and build failures are outcomes, compared against expect.error.
// An error is returned only when the scenario itself cannot be set up.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with build diagnostics sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	cfg := config.Default()
	if scenario.Config != "" {
		loaded, _, err := config.Load(scenario.resolve(scenario.Config))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		cfg = loaded
	}
	if scenario.Tolerance > 0 {
		cfg.Mesh.Tolerance = scenario.Tolerance
	}

	result := NewResult()

	c, err := compiler.CompileDir(scenario.resolve(scenario.Core))
	if err == nil {
		result.core = c
		result.Build, err = build.Run(c, cfg, logger)
	}

	if scenario.Expect.Error != "" {
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("expected error %q, build succeeded", scenario.Expect.Error))
		case !matchesError(err, scenario.Expect.Error):
			result.AddError(fmt.Sprintf("expected error %q, got: %v", scenario.Expect.Error, err))
		}
		return result, nil
	}
	if err != nil {
		result.AddError(fmt.Sprintf("build failed: %v", err))
		return result, nil
	}

	checkExpect(scenario.Expect, result)
	for i, a := range scenario.Assertions {
		if err := evaluate(a, result); err != nil {
			result.AddError(fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return result, nil
}

func matchesError(err error, want string) bool {
	if model.HasCode(err, model.ErrorCode(want)) {
		return true
	}
	var ce *compiler.CompileError
	if errors.As(err, &ce) && ce.Field == want {
		return true
	}
	return strings.Contains(err.Error(), want)
}

func checkExpect(e Expect, result *Result) {
	res := result.Build
	if e.Warnings != nil && len(res.Diagnostics) != *e.Warnings {
		result.AddError(fmt.Sprintf("expected %d warnings, got %d: %v", *e.Warnings, len(res.Diagnostics), res.Diagnostics))
	}
	for _, code := range e.Codes {
		found := slices.ContainsFunc(res.Diagnostics, func(d model.Diagnostic) bool {
			return d.Code == code
		})
		if !found {
			result.AddError(fmt.Sprintf("expected warning %s, not raised", code))
		}
	}
	if e.Mesh != nil && !slices.Equal(e.Mesh, res.Mesh) {
		result.AddError(fmt.Sprintf("expected mesh %v, got %v", e.Mesh, res.Mesh))
	}
}
