package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/hexcore/internal/build"
	"github.com/roach88/hexcore/internal/config"
	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/store"
)

// DefaultOutputDir is the deck directory, relative to the core directory,
// used when --output is not given.
const DefaultOutputDir = "decks"

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output    string  // deck output directory
	Tolerance float64 // mesh tolerance override
	Record    string  // build ledger path
}

// CompileSummary is the compile command's result payload.
type CompileSummary struct {
	Case        string             `json:"case"`
	Fingerprint string             `json:"fingerprint"`
	XSHash      string             `json:"xs_hash"`
	CoreHash    string             `json:"core_hash"`
	Assemblies  int                `json:"assemblies"`
	Sections    int                `json:"sections"`
	Materials   int                `json:"materials"`
	Layers      int                `json:"layers"`
	Warnings    []model.Diagnostic `json:"warnings"`
	Files       []string           `json:"files"`
	BuildID     string             `json:"build_id,omitempty"`
	Seq         int64              `json:"seq,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <core-dir>",
		Short: "Compile a CUE core description into solver decks",
		Long: `Compile a CUE core description into the cross-section deck (xs.inp) and
the core solver deck (core.inp).

The compiler checks the core structure, assigns canonical IDs, unifies
the axial mesh and renders both decks. With --record the build is
appended to a SQLite ledger together with its fingerprint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "deck output directory (default <core-dir>/"+DefaultOutputDir+")")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 0, "mesh tolerance (overrides mesh.tolerance)")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record the build in this SQLite ledger (overrides store.path)")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, coreDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	summary, err := compileAndWrite(ctx, opts, coreDir)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	return outputCompileSuccess(formatter, summary)
}

// compileAndWrite runs the full pipeline for one core directory. It is
// shared by compile and watch.
func compileAndWrite(ctx context.Context, opts *CompileOptions, coreDir string) (*CompileSummary, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	if opts.Tolerance != 0 {
		cfg.Mesh.Tolerance = opts.Tolerance
	}

	c, err := LoadCore(coreDir)
	if err != nil {
		return nil, err
	}

	res, err := build.Run(c, cfg, opts.logger())
	if err != nil {
		return nil, err
	}

	outDir := opts.Output
	if outDir == "" {
		outDir = filepath.Join(coreDir, DefaultOutputDir)
	}
	files, err := res.Write(outDir)
	if err != nil {
		return nil, &CodedError{Code: ErrCodeWriteFailed, Err: err}
	}

	summary := &CompileSummary{
		Case:        res.Case,
		Fingerprint: res.Fingerprint,
		XSHash:      res.XSHash,
		CoreHash:    res.CoreHash,
		Assemblies:  len(res.Assignment.Assemblies),
		Sections:    len(res.Assignment.Sections),
		Materials:   len(res.Assignment.Materials),
		Layers:      max(len(res.Mesh)-1, 0),
		Warnings:    res.Diagnostics,
		Files:       files,
	}
	if summary.Warnings == nil {
		summary.Warnings = []model.Diagnostic{}
	}

	if ledger := ledgerPath(opts.Record, cfg); ledger != "" {
		rec, err := recordBuild(ctx, ledger, res)
		if err != nil {
			return nil, &CodedError{Code: ErrCodeStore, Err: err}
		}
		summary.BuildID = rec.ID
		summary.Seq = rec.Seq
		opts.logger().Debug("recorded build", "ledger", ledger, "id", rec.ID, "seq", rec.Seq)
	}

	return summary, nil
}

func ledgerPath(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Store.Path
}

func recordBuild(ctx context.Context, path string, res *build.Result) (store.Build, error) {
	st, err := store.Open(path)
	if err != nil {
		return store.Build{}, err
	}
	defer st.Close()
	return st.RecordBuild(ctx, res)
}

func outputCompileSuccess(formatter *OutputFormatter, s *CompileSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %s: %d assemblies, %d sections, %d materials, %d layers\n",
		s.Case, s.Assemblies, s.Sections, s.Materials, s.Layers)
	fmt.Fprintf(w, "  fingerprint %s\n", s.Fingerprint)
	for _, d := range s.Warnings {
		fmt.Fprintf(w, "  warning %s\n", d)
	}
	for _, f := range s.Files {
		fmt.Fprintf(w, "Wrote %s\n", f)
	}
	if s.BuildID != "" {
		fmt.Fprintf(w, "Recorded build %s (seq %d)\n", s.BuildID, s.Seq)
	}
	return nil
}
