package deck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/hexcore/internal/canon"
	"github.com/roach88/hexcore/internal/config"
	"github.com/roach88/hexcore/internal/model"
	"github.com/roach88/hexcore/internal/runlength"
)

// RenderXS writes the cross-section deck: every section reachable from the
// lattice (supercell partners and the coolant included) and every material
// they use, in canonical ID order.
func RenderXS(c *model.Core, cfg *config.Config) (string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := c.RequireCompleted(); err != nil {
		return "", err
	}
	a := canon.Collect(c)

	var kinds runlength.Record[int]
	for _, ref := range a.Sections {
		s := c.Section(ref)
		kind, err := s.Method.GeomKind()
		if err != nil {
			var ce *model.CoreError
			if errors.As(err, &ce) {
				ce.Subject = s.Name
			}
			return "", err
		}
		kinds.Append(kind)
	}

	var b builder
	b.header(c.Name)

	b.banner(16, "CONTROL")
	b.line("CONTROL:")
	b.linef("%-22s%d", "n_mat", len(a.Sections))
	b.linef("%-22s%d", "n_material", len(a.Materials))
	b.linef("%-22s%s", "leakage_correct", cfg.XS.LeakageCorrect)
	b.WriteString(fmt.Sprintf("%-22s", "group_info"))
	for _, n := range cfg.XS.GroupStructure {
		b.WriteString(fmt.Sprintf("%-8d", n))
	}
	b.WriteByte('\n')
	b.linef("%-22s%s", "geom_kind", kinds.Join(runlength.FormatInt))
	b.gap()

	b.banner(16, "GEOMETRY")
	b.line("GEOMETRY:")
	for _, ref := range a.Sections {
		s := c.Section(ref)
		if err := writeSection(&b, c, s, false); err != nil {
			return "", err
		}
		if s.Method == model.EquivSupercell {
			if !c.HasSection(s.Partner) {
				return "", &model.CoreError{Code: model.ErrCodeDanglingRef, Message: "supercell section has no partner", Subject: s.Name}
			}
			if err := writeSection(&b, c, c.Section(s.Partner), true); err != nil {
				return "", err
			}
		}
		b.line("end")
		b.gap()
	}

	b.banner(16, "MATERIAL")
	b.line("MATERIAL:")
	for _, ref := range a.Materials {
		m := c.Material(ref)
		b.linef("! material: %s", m.Name)
		b.linef("m%d", m.ID)
		for _, n := range m.ActiveNuclides() {
			b.linef("%s%-9s%12.3E%10.2f", indent, n.Name, n.Density, n.Temperature)
		}
		b.gap()
	}

	return b.text(), nil
}

// writeSection writes the rod and region keywords of s. A supercell partner
// block (sc) has its keywords prefixed with "sc_" and no header, rod_dis or
// ring_num.
func writeSection(b *builder, c *model.Core, s *model.Section, sc bool) error {
	if len(s.Rods) > 0 && s.RodRings <= 0 {
		return &model.CoreError{Code: model.ErrCodeMissingRingNumber, Message: "rods without a rod ring count", Subject: s.Name}
	}

	prefix := ""
	if sc {
		prefix = "sc_"
	} else {
		b.linef("! Section: %s", s.Name)
		b.linef("mat%d", s.ID)
	}

	if len(s.Rods) > 0 {
		b.line(prefix + "rod")
		b.linef("%s%-14s%d", indent, prefix+"rod_num", s.RodRings)
		geo, mat := layerColumns(c, s.Rods)
		b.linef("%s%-14s%s", indent, prefix+"rod_geo", geo)
		b.linef("%s%-14s%s", indent, prefix+"rod_mat", mat)
		if !sc {
			b.linef("%s%-14s%-8.4f", indent, "rod_dis", s.RodPitch)
			if s.Method != model.EquivSupercell {
				rings := make([]string, s.RodRings)
				for i := range rings {
					rings[i] = strconv.Itoa(i + 1)
				}
				b.linef("%s%-14s%s", indent, "ring_num", strings.Join(rings, " "))
			}
		}
	}

	if len(s.Regions) > 0 {
		b.line(prefix + "region   hex")
		geo, mat := layerColumns(c, s.Regions)
		b.linef("%s%-14s%s", indent, prefix+"region_geo", geo)
		b.linef("%s%-14s%s", indent, prefix+"region_mat", mat)
	}
	return nil
}

// layerColumns formats the sizes and material IDs of a layer list as fixed
// width columns.
func layerColumns(c *model.Core, layers []model.Layer) (geo, mat string) {
	var g, m strings.Builder
	for _, l := range layers {
		fmt.Fprintf(&g, "%-8.4f", l.Size)
		fmt.Fprintf(&m, "%-8d", c.Material(l.Material).ID)
	}
	return g.String(), m.String()
}
