package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/hexcore/internal/densify"
)

// DensifyOptions holds flags for the densify command.
type DensifyOptions struct {
	*RootOptions
	Height float64 // maximum layer height
}

// NewDensifyCommand creates the densify command.
func NewDensifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DensifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "densify <core-deck>",
		Short: "Split coarse axial layers of a core deck",
		Long: `Split every axial layer of a core solver deck that is taller than
--height into equal sublayers and stretch each assembly's layer record to
match. The result is written to <dir>/<stem>_mesh<height>/<file>.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDensify(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Height, "height", 0, "maximum layer height (default densify.max_height)")

	return cmd
}

func runDensify(opts *DensifyOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	height := opts.Height
	if !cmd.Flags().Changed("height") {
		cfg, err := opts.loadConfig()
		if err != nil {
			return formatter.Fail(ExitCommandError, err)
		}
		height = cfg.Densify.MaxHeight
	}

	report, err := densify.File(path, height)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	opts.logger().Info("densified deck",
		"source", report.Source,
		"output", report.Output,
		"layers_before", report.LayersBefore,
		"layers_after", report.LayersAfter)

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return formatter.Success(report.String())
}
