package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hexcore/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	CompileOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{CompileOptions: CompileOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "watch <core-dir>",
		Short: "Recompile a core whenever its CUE files change",
		Long: `Compile a core once, then recompile it whenever a .cue file in the
directory is created, written, renamed or removed. Bursts of events
within the debounce interval trigger a single rebuild.

Failed rebuilds are reported and watching continues. Interrupt to stop.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "deck output directory (default <core-dir>/"+DefaultOutputDir+")")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 0, "mesh tolerance (overrides mesh.tolerance)")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record every build in this SQLite ledger (overrides store.path)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "quiet period before rebuilding")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, coreDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if info, err := os.Stat(coreDir); err != nil || !info.IsDir() {
		return formatter.Fail(ExitCommandError, &CodedError{Code: ErrCodeNotFound, Err: fmt.Errorf("core directory not found: %s", coreDir)})
	}

	rebuild := func(ctx context.Context) error {
		summary, err := compileAndWrite(ctx, &opts.CompileOptions, coreDir)
		if err != nil {
			code, message, _ := describeError(err)
			fmt.Fprintf(formatter.ErrWriter, "✗ Error [%s]: %s\n", code, message)
			return err
		}
		return outputCompileSuccess(formatter, summary)
	}

	// A broken core at startup is reported like any later failure.
	_ = rebuild(ctx)

	w, err := watch.New(coreDir, opts.Debounce, rebuild)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	w.WithLogger(opts.logger())
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return formatter.Fail(ExitCommandError, err)
	}

	<-ctx.Done()
	w.Stop()
	return nil
}
