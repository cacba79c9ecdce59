// Package compiler turns a CUE core description into a model.Core.
//
// The description has five top-level fields: core, material, section,
// assembly and lattice. Materials, sections and assemblies are keyed by
// label and referenced by label. Every lattice placement instantiates its
// own assembly with its own copy of the stack bounds.
//
// Names are NFC normalized. Unknown labels, missing required fields and
// invalid values are CompileErrors carrying the CUE source position.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/hexcore/internal/model"
)

// CompileCore parses the root value of a core description.
func CompileCore(v cue.Value) (*model.Core, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := Validate(v); err != nil {
		return nil, err
	}

	coreVal := v.LookupPath(cue.ParsePath("core"))
	if !coreVal.Exists() {
		return nil, &CompileError{Field: "core", Message: "core is required", Pos: v.Pos()}
	}
	name, err := requiredString(coreVal, "name", "core.name")
	if err != nil {
		return nil, err
	}
	rings, err := requiredInt(coreVal, "rings", "core.rings")
	if err != nil {
		return nil, err
	}
	if rings < 1 {
		return nil, fieldError(coreVal, "rings", "core.rings", fmt.Sprintf("must be >= 1, got %d", rings))
	}
	pitch, err := requiredFloat(coreVal, "pitch", "core.pitch")
	if err != nil {
		return nil, err
	}
	if !(pitch > 0) {
		return nil, fieldError(coreVal, "pitch", "core.pitch", fmt.Sprintf("must be > 0, got %g", pitch))
	}

	c := model.NewCore(name, rings, pitch)
	cc := &coreCompiler{
		core:       c,
		materials:  make(map[string]model.MaterialRef),
		sections:   make(map[string]model.SectionRef),
		assemblies: make(map[string]assemblyTemplate),
	}

	if err := cc.compileMaterials(v.LookupPath(cue.ParsePath("material"))); err != nil {
		return nil, err
	}
	if err := cc.compileSections(v.LookupPath(cue.ParsePath("section"))); err != nil {
		return nil, err
	}

	coolantVal := coreVal.LookupPath(cue.ParsePath("coolant"))
	coolant, err := requiredString(coreVal, "coolant", "core.coolant")
	if err != nil {
		return nil, err
	}
	ref, ok := cc.sections[coolant]
	if !ok {
		return nil, &CompileError{Field: "core.coolant", Message: fmt.Sprintf("unknown section %q", coolant), Pos: coolantVal.Pos()}
	}
	c.Coolant = ref

	if err := cc.compileAssemblies(v.LookupPath(cue.ParsePath("assembly"))); err != nil {
		return nil, err
	}
	if err := cc.compileLattice(v.LookupPath(cue.ParsePath("lattice"))); err != nil {
		return nil, err
	}
	return c, nil
}

type assemblyTemplate struct {
	typeName string
	stack    []model.Placement
}

type coreCompiler struct {
	core       *model.Core
	materials  map[string]model.MaterialRef
	sections   map[string]model.SectionRef
	assemblies map[string]assemblyTemplate
}

func (cc *coreCompiler) compileMaterials(v cue.Value) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		mv := iter.Value()
		field := "material." + label

		name, err := optionalString(mv, "name", field+".name", label)
		if err != nil {
			return err
		}
		keep, err := optionalBool(mv, "keep_low_density", field+".keep_low_density")
		if err != nil {
			return err
		}

		m := model.Material{Name: name, KeepLowDensity: keep}
		err = eachListItem(mv, "nuclides", field+".nuclides", func(i int, nv cue.Value) error {
			nf := fmt.Sprintf("%s.nuclides[%d]", field, i)
			nuc, err := requiredString(nv, "name", nf+".name")
			if err != nil {
				return err
			}
			density, err := requiredFloat(nv, "density", nf+".density")
			if err != nil {
				return err
			}
			if density < 0 {
				return fieldError(nv, "density", nf+".density", fmt.Sprintf("must be >= 0, got %g", density))
			}
			temp, err := requiredFloat(nv, "temperature", nf+".temperature")
			if err != nil {
				return err
			}
			m.Nuclides = append(m.Nuclides, model.Nuclide{Name: nuc, Density: density, Temperature: temp})
			return nil
		})
		if err != nil {
			return err
		}
		cc.materials[label] = cc.core.AddMaterial(m)
	}
	return nil
}

func (cc *coreCompiler) compileSections(v cue.Value) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	type pending struct {
		ref     model.SectionRef
		partner string
		pos     cue.Value
	}
	var partners []pending

	for iter.Next() {
		label := iter.Selector().Unquoted()
		sv := iter.Value()
		field := "section." + label

		name, err := optionalString(sv, "name", field+".name", label)
		if err != nil {
			return err
		}
		method, err := optionalString(sv, "method", field+".method", string(model.EquivHomogeneous))
		if err != nil {
			return err
		}
		if !model.ValidEquivMethods[model.EquivMethod(method)] {
			return fieldError(sv, "method", field+".method", fmt.Sprintf("invalid equivalence method %q (valid: homo, 1-D, supercell)", method))
		}

		s := model.Section{Name: name, Method: model.EquivMethod(method), Partner: model.NoSection}

		if rod := sv.LookupPath(cue.ParsePath("rod")); rod.Exists() {
			if s.RodRings, err = requiredInt(rod, "rings", field+".rod.rings"); err != nil {
				return err
			}
			if s.RodPitch, err = requiredFloat(rod, "pitch", field+".rod.pitch"); err != nil {
				return err
			}
			if s.Rods, err = cc.compileLayers(rod, "layers", field+".rod.layers"); err != nil {
				return err
			}
		}
		if s.Regions, err = cc.compileLayers(sv, "region", field+".region"); err != nil {
			return err
		}

		ref := cc.core.AddSection(s)
		cc.sections[label] = ref

		partnerVal := sv.LookupPath(cue.ParsePath("partner"))
		switch {
		case s.Method == model.EquivSupercell && !partnerVal.Exists():
			return &CompileError{Field: field + ".partner", Message: "supercell section requires a partner", Pos: sv.Pos()}
		case s.Method != model.EquivSupercell && partnerVal.Exists():
			return &CompileError{Field: field + ".partner", Message: "partner is only allowed for supercell sections", Pos: partnerVal.Pos()}
		case partnerVal.Exists():
			partner, err := partnerVal.String()
			if err != nil {
				return formatCUEError(err)
			}
			partners = append(partners, pending{ref: ref, partner: partner, pos: partnerVal})
		}
	}

	// Partners may be declared after the section referencing them.
	for _, p := range partners {
		ref, ok := cc.sections[p.partner]
		if !ok {
			return &CompileError{Field: "section.partner", Message: fmt.Sprintf("unknown section %q", p.partner), Pos: p.pos.Pos()}
		}
		if ref == p.ref {
			return &CompileError{Field: "section.partner", Message: "a section cannot be its own supercell partner", Pos: p.pos.Pos()}
		}
		cc.core.Section(p.ref).Partner = ref
	}
	return nil
}

func (cc *coreCompiler) compileLayers(v cue.Value, path, field string) ([]model.Layer, error) {
	var out []model.Layer
	err := eachListItem(v, path, field, func(i int, lv cue.Value) error {
		lf := fmt.Sprintf("%s[%d]", field, i)
		size, err := requiredFloat(lv, "size", lf+".size")
		if err != nil {
			return err
		}
		if !(size > 0) {
			return fieldError(lv, "size", lf+".size", fmt.Sprintf("must be > 0, got %g", size))
		}
		label, err := requiredString(lv, "material", lf+".material")
		if err != nil {
			return err
		}
		ref, ok := cc.materials[label]
		if !ok {
			return fieldError(lv, "material", lf+".material", fmt.Sprintf("unknown material %q", label))
		}
		out = append(out, model.Layer{Size: size, Material: ref})
		return nil
	})
	return out, err
}

func (cc *coreCompiler) compileAssemblies(v cue.Value) error {
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		av := iter.Value()
		field := "assembly." + label

		typeName, err := optionalString(av, "type", field+".type", label)
		if err != nil {
			return err
		}
		stack, err := cc.compileStack(av, field)
		if err != nil {
			return err
		}
		cc.assemblies[label] = assemblyTemplate{typeName: typeName, stack: stack}
	}
	return nil
}

// compileStack reads a stack either from explicit bounds or from heights
// and a reference plane. The two forms cannot be mixed.
func (cc *coreCompiler) compileStack(av cue.Value, field string) ([]model.Placement, error) {
	var (
		stack   []model.Placement
		heights []float64
	)
	err := eachListItem(av, "stack", field+".stack", func(i int, ev cue.Value) error {
		ef := fmt.Sprintf("%s.stack[%d]", field, i)
		label, err := requiredString(ev, "section", ef+".section")
		if err != nil {
			return err
		}
		ref, ok := cc.sections[label]
		if !ok {
			return fieldError(ev, "section", ef+".section", fmt.Sprintf("unknown section %q", label))
		}

		boundsVal := ev.LookupPath(cue.ParsePath("bounds"))
		heightVal := ev.LookupPath(cue.ParsePath("height"))
		switch {
		case boundsVal.Exists() && heightVal.Exists():
			return &CompileError{Field: ef, Message: "bounds and height are mutually exclusive", Pos: ev.Pos()}
		case boundsVal.Exists():
			if len(heights) > 0 {
				return &CompileError{Field: ef, Message: "cannot mix bounds and heights in one stack", Pos: ev.Pos()}
			}
			b, err := parseBounds(boundsVal, ef+".bounds")
			if err != nil {
				return err
			}
			stack = append(stack, model.Placement{Section: ref, Bounds: b})
		case heightVal.Exists():
			if len(stack) > len(heights) {
				return &CompileError{Field: ef, Message: "cannot mix bounds and heights in one stack", Pos: ev.Pos()}
			}
			h, err := heightVal.Float64()
			if err != nil {
				return formatCUEError(err)
			}
			heights = append(heights, h)
			stack = append(stack, model.Placement{Section: ref})
		default:
			return &CompileError{Field: ef, Message: "bounds or height is required", Pos: ev.Pos()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(heights) == 0 {
		return stack, nil
	}

	refVal := av.LookupPath(cue.ParsePath("reference"))
	if !refVal.Exists() {
		return nil, &CompileError{Field: field + ".reference", Message: "reference is required when the stack is given by heights", Pos: av.Pos()}
	}
	index, err := requiredInt(refVal, "index", field+".reference.index")
	if err != nil {
		return nil, err
	}
	bias, err := optionalFloat(refVal, "bias", field+".reference.bias", 0)
	if err != nil {
		return nil, err
	}
	bounds, err := model.StackByHeight(heights, index, bias)
	if err != nil {
		return nil, &CompileError{Field: field + ".reference", Message: err.Error(), Pos: refVal.Pos()}
	}
	for i := range stack {
		stack[i].Bounds = bounds[i]
	}
	return stack, nil
}

func parseBounds(v cue.Value, field string) (model.Bound, error) {
	var vals []float64
	iter, err := v.List()
	if err != nil {
		return model.Bound{}, formatCUEError(err)
	}
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return model.Bound{}, formatCUEError(err)
		}
		vals = append(vals, f)
	}
	if len(vals) != 2 {
		return model.Bound{}, &CompileError{Field: field, Message: fmt.Sprintf("expected [lower, upper], got %d values", len(vals)), Pos: v.Pos()}
	}
	b := model.Bound{Lower: vals[0], Upper: vals[1]}
	if !b.Valid() {
		return model.Bound{}, &CompileError{Field: field, Message: fmt.Sprintf("lower bound must be below upper bound, got %s", b), Pos: v.Pos()}
	}
	return b, nil
}

func (cc *coreCompiler) compileLattice(v cue.Value) error {
	if !v.Exists() {
		return &CompileError{Field: "lattice", Message: "lattice is required", Pos: v.Pos()}
	}
	rings, err := v.List()
	if err != nil {
		return formatCUEError(err)
	}
	for r := 0; rings.Next(); r++ {
		ringVal := rings.Value()
		var refs []model.AssemblyRef
		slots, err := ringVal.List()
		if err != nil {
			return formatCUEError(err)
		}
		for k := 0; slots.Next(); k++ {
			sv := slots.Value()
			field := fmt.Sprintf("lattice[%d][%d]", r, k)

			location, err := requiredString(sv, "location", field+".location")
			if err != nil {
				return err
			}
			label, err := requiredString(sv, "assembly", field+".assembly")
			if err != nil {
				return err
			}
			tmpl, ok := cc.assemblies[label]
			if !ok {
				return fieldError(sv, "assembly", field+".assembly", fmt.Sprintf("unknown assembly %q", label))
			}
			typeName, err := optionalString(sv, "type", field+".type", tmpl.typeName)
			if err != nil {
				return err
			}
			refs = append(refs, cc.core.AddAssembly(model.Assembly{
				Type:     typeName,
				Location: location,
				Stack:    tmpl.stack,
			}))
		}
		if err := cc.core.AppendRing(refs...); err != nil {
			return &CompileError{Field: fmt.Sprintf("lattice[%d]", r), Message: err.Error(), Pos: ringVal.Pos()}
		}
	}
	return nil
}

func fieldError(v cue.Value, path, field, msg string) error {
	pos := v.Pos()
	if fv := v.LookupPath(cue.ParsePath(path)); fv.Exists() {
		pos = fv.Pos()
	}
	return &CompileError{Field: field, Message: msg, Pos: pos}
}

func requiredString(v cue.Value, path, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

func optionalString(v cue.Value, path, field, def string) (string, error) {
	if !v.LookupPath(cue.ParsePath(path)).Exists() {
		return norm.NFC.String(def), nil
	}
	return requiredString(v, path, field)
}

func optionalBool(v cue.Value, path, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func requiredInt(v cue.Value, path, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func requiredFloat(v cue.Value, path, field string) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

func optionalFloat(v cue.Value, path, field string, def float64) (float64, error) {
	if !v.LookupPath(cue.ParsePath(path)).Exists() {
		return def, nil
	}
	return requiredFloat(v, path, field)
}

// eachListItem calls fn for every element of the list at path. A missing
// list is empty.
func eachListItem(v cue.Value, path, field string, fn func(i int, item cue.Value) error) error {
	lv := v.LookupPath(cue.ParsePath(path))
	if !lv.Exists() {
		return nil
	}
	iter, err := lv.List()
	if err != nil {
		return &CompileError{Field: field, Message: "must be a list", Pos: lv.Pos()}
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(i, iter.Value()); err != nil {
			return err
		}
	}
	return nil
}
