package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB   string
	Case string
	IDs  bool // print the canonical IDs of the latest build
}

// HistoryResult is the history command's result payload.
type HistoryResult struct {
	Builds []store.Build             `json:"builds"`
	IDs    map[string][]canon.Entry `json:"ids,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List builds recorded in a ledger",
		Long: `List builds recorded with compile --record, oldest first.

With --ids and --case the canonical ID map of the latest build of that
case is printed as well.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "ledger path (default store.path)")
	cmd.Flags().StringVar(&opts.Case, "case", "", "only list builds of this case")
	cmd.Flags().BoolVar(&opts.IDs, "ids", false, "print canonical IDs of the latest build (requires --case)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	path := opts.DB
	if path == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return formatter.Fail(ExitCommandError, err)
		}
		path = cfg.Store.Path
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, &CodedError{Code: ErrCodeNotFound, Err: errors.New("no ledger given: use --db or store.path")})
	}
	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ExitCommandError, &CodedError{Code: ErrCodeNotFound, Err: fmt.Errorf("ledger not found: %s", path)})
	}
	if opts.IDs && opts.Case == "" {
		return formatter.Fail(ExitCommandError, errors.New("--ids requires --case"))
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, &CodedError{Code: ErrCodeStore, Err: err})
	}
	defer st.Close()

	builds, err := st.ListBuilds(ctx, opts.Case)
	if err != nil {
		return formatter.Fail(ExitCommandError, &CodedError{Code: ErrCodeStore, Err: err})
	}
	result := HistoryResult{Builds: builds}

	if opts.IDs {
		latest, err := st.LatestBuild(ctx, opts.Case)
		if err != nil {
			return formatter.Fail(ExitCommandError, &CodedError{Code: ErrCodeStore, Err: err})
		}
		result.IDs, err = st.CanonicalIDs(ctx, latest.ID)
		if err != nil {
			return formatter.Fail(ExitCommandError, &CodedError{Code: ErrCodeStore, Err: err})
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputHistoryText(formatter, result)
}

func outputHistoryText(formatter *OutputFormatter, r HistoryResult) error {
	w := formatter.Writer
	if len(r.Builds) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-6s%-38s%-16s%-14s%s\n", "seq", "build", "case", "fingerprint", "warnings")
	for _, b := range r.Builds {
		fmt.Fprintf(w, "%-6d%-38s%-16s%-14s%d\n", b.Seq, b.ID, b.Case, b.Fingerprint[:min(12, len(b.Fingerprint))], b.Warnings)
	}

	for _, kind := range []string{"assembly", "section", "material"} {
		entries := r.IDs[kind]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", kind)
		for _, e := range entries {
			fmt.Fprintf(w, "  %4d  %s\n", e.ID, e.Key)
		}
	}
	return nil
}
