package deck

import (
	"fmt"
	"strings"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/config"
	"github.com/roach88/hexcore/internal/hexlattice"
	"github.com/roach88/hexcore/internal/layers"
	"github.com/roach88/hexcore/internal/model"
)

// RenderCore writes the core deck.
func RenderCore(c *model.Core, cfg *config.Config) (string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := c.RequireCompleted(); err != nil {
		return "", err
	}
	if err := c.RequireMeshed(); err != nil {
		return "", err
	}
	a := canon.Collect(c)

	records, err := layers.EncodeAll(c, a.Assemblies)
	if err != nil {
		return "", err
	}
	rows, err := LatticeRows(c)
	if err != nil {
		return "", err
	}

	var b builder
	b.header(c.Name)

	b.banner(36, "CASENAME")
	b.linef("CASENAME: %s", c.Name)
	b.gap()

	writeControl(&b, cfg.Control)
	writeMethod(&b, cfg.Method)

	b.banner(36, "MATERIAL")
	b.line("MATERIAL:")
	b.linef("%-16s%-16s", "!", "on-off")
	b.linef("%-16s%-16s", "low_scat_order", boolFlag(cfg.Material.LowScatter))
	b.linef("%-16s%-16s%-16s%-16s%-16s", "!", "mat id", "xs file", "temp id", "mat type")
	for _, ref := range a.Sections {
		id := c.Section(ref).ID
		b.linef("%-16s%-16d%-16s%-16d", "mat_file", id, fmt.Sprintf("MAT%d", id), 1)
	}
	b.gap()

	b.banner(36, "GEOMETRY")
	b.line("GEOMETRY:")

	heights := make([]float64, c.Cells())
	for i := range heights {
		heights[i] = c.Mesh[i+1] - c.Mesh[i]
	}
	b.linef("%-16s%-16s%-16s", "!", "num_layer", "axial height")
	b.line(LayerLine(heights))

	b.linef("%-16s%-16s%-16s", "!", "bc bottom", "bc top")
	b.linef("%-16s%-16d%-16d", "bc_axial", cfg.Geometry.BCAxial[0], cfg.Geometry.BCAxial[1])
	b.gap()

	b.linef("%-16s%-16s%-32s%-32s", "!", "FA id", "assembly type", "assembly location")
	for _, ref := range a.Assemblies {
		asm := c.Assembly(ref)
		b.linef("%-16s%-16d%-32s%-32s", "!", asm.ID, asm.Type, asm.Location)
	}
	b.line("!" + strings.Repeat(".", 100))
	b.linef("%-16s%-16s%-16s", "!", "FA id", "layer mat id")
	for i, ref := range a.Assemblies {
		b.line(AssemblyLine(c.Assembly(ref).ID, records[i]))
	}
	b.gap()

	b.linef("%-16s%-16s%-16s%-16s", "!", "degree", "ring", "pitch [cm]")
	b.linef("%-16s%-16d%-16d%-16.4f", "hex_dim", 360, c.Rings, c.Pitch)
	b.linef("%-16s%-16s", "!", "assembly lattice")
	b.line("hex_conf")
	for _, row := range rows {
		b.line(row)
	}
	b.gap()

	b.banner(36, "END")
	b.line("END:")

	return b.text(), nil
}

func writeControl(b *builder, ctl config.ControlConfig) {
	b.banner(36, "CONTROL")
	b.line("CONTROL:")
	b.linef("%-16s%-16s%-16s", "!", "power(Wth)", "(n,gamma)heating")
	b.linef("%-16s%-16.4E%-16s", "steady", ctl.Power, boolFlag(ctl.GammaHeat))
	b.linef("%-16s%-16s", "!", "on-off")
	b.linef("%-16s%-16s", "depletion", boolFlag(ctl.Depletion))
	b.linef("%-16s%-16s%-16s", "!", "on-off", "target keff")
	b.linef("%-16s%-16s%-16.5f", "rod_search", boolFlag(ctl.RodSearch), ctl.TargetKeff)
	b.linef("%-16s%-16s", "!", "on-off")
	b.linef("%-16s%-16s", "worth", boolFlag(ctl.Worth))
	b.linef("%-16s%-16s%-16s", "!", "on-off", "neutron balance")
	b.linef("%-16s%-16s%-16s", "reactivity", boolFlag(ctl.Reactivity), boolFlag(ctl.NeutronBalance))
	b.linef("%-16s%-16s%-16s%-16s", "!", "power", "VTK", "restart")
	b.linef("%-16s%-16s%-16s%-16s", "output", boolFlag(ctl.OutputPower), boolFlag(ctl.OutputVTK), boolFlag(ctl.Restart))
	b.linef("%-16s%-16s", "!", "on-off")
	b.linef("%-16s%-16s", "th", boolFlag(ctl.Thermal))
	b.linef("%-16s%-16s", "!", "on-off")
	b.linef("%-16s%-16s", "reconstruct", boolFlag(ctl.Reconstruct))
	b.gap()
}

func writeMethod(b *builder, m config.MethodConfig) {
	b.banner(36, "METHOD")
	b.line("METHOD:")
	b.linef("%-16s%-16s", "!", "even integer")
	b.linef("%-16s%-16d", "sn_order", m.SNOrder)
	b.linef("%-16s%-16s%-16s%-16s%-16s%-16s", "!", "max_inner", "max_outer", "rms_inner", "rms_outer", "rms_eigen")
	b.linef("%-16s%-16d%-16d%-16.1E%-16.1E%-16.1E", "error_eigen", m.MaxInner, m.MaxOuter, m.RMSInner, m.RMSOuter, m.RMSEigen)
	b.linef("%-16s%-16s", "!", "nThread")
	b.linef("%-16s%-16d", "openmp", m.Threads)
	b.linef("%-16s%-16s", "!", "on-off")
	b.linef("%-16s%-16s", "cmacc", boolFlag(m.CMAcc))
	b.linef("%-16s%-16s", "!", "space expansion order")
	b.linef("%-16s%-16d", "space_order", m.SpaceOrder)
	b.gap()
}

// LatticeRows formats the hex_conf rows of the declared ring count. Every
// slot must hold an assembly.
func LatticeRows(c *model.Core) ([]string, error) {
	rows := hexlattice.Rows(c.Rings)
	out := make([]string, len(rows))
	for l, row := range rows {
		d := c.Rings - 1 - l
		if d < 0 {
			d = -d
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s%2d%s%s", indent, l+1, indent, strings.Repeat(" ", d))
		for _, coord := range row {
			ref := c.At(coord)
			if ref == model.NoAssembly {
				return nil, &model.CoreError{Code: model.ErrCodeEmptySlot, Message: "lattice slot has no assembly", Subject: coord.String()}
			}
			fmt.Fprintf(&sb, "%4d", c.Assembly(ref).ID)
		}
		out[l] = sb.String()
	}
	return out, nil
}
