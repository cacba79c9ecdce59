package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hexcore/internal/build"
	"github.com/roach88/hexcore/internal/model"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // fail on consistency warnings
}

// ValidationResult is the validate command's result payload.
type ValidationResult struct {
	Case     string             `json:"case"`
	Valid    bool               `json:"valid"`
	Warnings []model.Diagnostic `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <core-dir>",
		Short: "Check a CUE core description without writing decks",
		Long: `Compile a core description in memory and report consistency warnings.

Exit codes:
  0 - Core is valid (warnings allowed unless --strict)
  1 - Warnings were raised under --strict
  2 - Core could not be compiled`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat consistency warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, coreDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	c, err := LoadCore(coreDir)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	res, err := build.Run(c, cfg, opts.logger())
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}

	result := ValidationResult{
		Case:     res.Case,
		Valid:    !opts.Strict || len(res.Diagnostics) == 0,
		Warnings: res.Diagnostics,
	}
	if result.Warnings == nil {
		result.Warnings = []model.Diagnostic{}
	}

	if err := outputValidateResult(formatter, result); err != nil {
		return err
	}
	if !result.Valid {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d consistency warning(s)", len(result.Warnings)),
			Reported: true,
		}
	}
	return nil
}

func outputValidateResult(formatter *OutputFormatter, r ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(r)
	}

	w := formatter.Writer
	if r.Valid {
		fmt.Fprintf(w, "✓ %s is valid (%d warning(s))\n", r.Case, len(r.Warnings))
	} else {
		fmt.Fprintf(w, "✗ %s has %d warning(s)\n", r.Case, len(r.Warnings))
	}
	for _, d := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", d)
	}
	return nil
}
