package document

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/dae/accessor"
	"github.com/mogaika/dae_browser/dae/flat"
	"github.com/mogaika/dae_browser/dae/skin"
)

type loader struct {
	log     *zap.Logger
	arrays  *flat.Builder
	sources map[string]*accessor.Descriptor
	errs    error
}

func (l *loader) fail(err error) {
	l.errs = multierr.Append(l.errs, err)
}

func (src *xmlSource) array() (*xmlArray, flat.Kind) {
	switch {
	case src.FloatArray != nil:
		return src.FloatArray, flat.Float
	case src.IntArray != nil:
		return src.IntArray, flat.Int
	case src.BoolArray != nil:
		return src.BoolArray, flat.Bool
	case src.NameArray != nil:
		return src.NameArray, flat.Name
	case src.IDRefArray != nil:
		return src.IDRefArray, flat.IDRef
	}
	return nil, 0
}

func (l *loader) addArray(src *xmlSource) error {
	a, kind := src.array()
	if a == nil {
		return nil
	}
	if a.ID == "" {
		l.log.Warn("array without id can not be referenced, skipping", zap.String("source", src.ID))
		return nil
	}

	var observed int
	var err error
	switch kind {
	case flat.Float:
		var values []float32
		if values, err = parseFloats(a.Body); err == nil {
			observed = len(values)
			err = l.arrays.AddFloats(a.ID, values)
		}
	case flat.Int:
		var values []int
		if values, err = parseInts(a.Body); err == nil {
			observed = len(values)
			err = l.arrays.AddInts(a.ID, values)
		}
	case flat.Bool:
		var values []bool
		if values, err = parseBools(a.Body); err == nil {
			observed = len(values)
			err = l.arrays.AddBools(a.ID, values)
		}
	case flat.Name:
		var values []string
		if values, err = parseNames(a.Body); err == nil {
			observed = len(values)
			err = l.arrays.AddNames(a.ID, values)
		}
	case flat.IDRef:
		var values []string
		if values, err = parseNames(a.Body); err == nil {
			observed = len(values)
			err = l.arrays.AddIDRefs(a.ID, values)
		}
	}
	if err != nil {
		return err
	}
	if a.Count != nil && *a.Count != observed {
		l.log.Warn("declared array count differs from values",
			zap.String("array", a.ID), zap.Int("declared", *a.Count), zap.Int("observed", observed))
	}
	return nil
}

func (l *loader) addSource(src *xmlSource) {
	if err := l.addArray(src); err != nil {
		l.fail(errors.Wrapf(err, "Failed to load array of source %q", src.ID))
		return
	}
	if src.Accessor == nil {
		l.log.Warn("source without accessor", zap.String("source", src.ID))
		return
	}
	if _, exists := l.sources[src.ID]; exists {
		l.fail(errors.Errorf("Source %q defined twice", src.ID))
		return
	}

	acc := src.Accessor
	params := make([]accessor.Param, len(acc.Params))
	for i, p := range acc.Params {
		if _, ok := accessor.TypeSize(p.Type); !ok {
			l.log.Warn("unknown param type, assuming one value",
				zap.String("source", src.ID), zap.String("param", p.Name), zap.String("type", p.Type))
		}
		params[i] = accessor.Param{Name: p.Name, Type: p.Type}
	}
	d, err := accessor.NewDescriptor(src.ID, acc.Source, acc.Count, acc.Offset, acc.Stride, params)
	if err != nil {
		l.fail(err)
		return
	}
	l.sources[src.ID] = d
}

func convertInputs(inputs []xmlInput) []Input {
	result := make([]Input, len(inputs))
	for i, in := range inputs {
		result[i] = Input{
			Semantic: in.Semantic,
			Source:   strings.TrimPrefix(in.Source, "#"),
			Offset:   in.Offset,
			Set:      in.Set,
		}
	}
	return result
}

func (l *loader) geometry(g *xmlGeometry) *Geometry {
	geometry := &Geometry{
		ID:   g.ID,
		Name: g.Name,
		Vertices: Vertices{
			ID:     g.Mesh.Vertices.ID,
			Inputs: convertInputs(g.Mesh.Vertices.Inputs),
		},
	}

	failed := false
	for i := range g.Mesh.Primitives {
		x := &g.Mesh.Primitives[i]
		kind, ok := primitiveKinds[x.XMLName.Local]
		if !ok {
			continue
		}
		p, err := l.primitive(fmt.Sprintf("%s/%s[%d]", g.ID, kind, len(geometry.Primitives)), kind, x)
		if err != nil {
			l.fail(err)
			failed = true
			continue
		}
		geometry.Primitives = append(geometry.Primitives, p)
	}
	if failed {
		return nil
	}
	return geometry
}

func (l *loader) primitive(element string, kind PrimitiveKind, x *xmlPrimitive) (*Primitive, error) {
	p := &Primitive{
		Element:  element,
		Kind:     kind,
		Material: x.Material,
		Inputs:   convertInputs(x.Inputs),
	}
	if x.Count != nil {
		p.Count = *x.Count
		p.Window.Count, p.Window.HasCount = *x.Count, true
	} else {
		p.Count = -1
	}
	if x.First != nil {
		p.Window.First, p.Window.HasFirst = *x.First, true
	}
	if x.End != nil {
		p.Window.End, p.Window.HasEnd = *x.End, true
	}

	var err error
	if kind.Ragged() {
		p.Groups = make([][]int, len(x.P))
		for i, text := range x.P {
			if p.Groups[i], err = parseInts(text); err != nil {
				return nil, errors.Wrapf(err, "Failed to parse <p> %d of %q", i, element)
			}
		}
		return p, nil
	}

	if len(x.P) > 1 {
		l.log.Warn("multiple <p> elements, using the first", zap.String("element", element), zap.Int("count", len(x.P)))
	}
	if len(x.P) > 0 {
		if p.P, err = parseInts(x.P[0]); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse <p> of %q", element)
		}
	}
	if kind == PolyList {
		if p.VCount, err = parseInts(x.VCount); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse <vcount> of %q", element)
		}
	}
	return p, nil
}

func convertSkinInputs(inputs []xmlInput) []skin.Input {
	result := make([]skin.Input, len(inputs))
	for i, in := range inputs {
		result[i] = skin.Input{
			Semantic: in.Semantic,
			Source:   strings.TrimPrefix(in.Source, "#"),
			Offset:   in.Offset,
		}
	}
	return result
}

func (l *loader) skin(c *xmlController) *skin.Skin {
	x := c.Skin
	s := &skin.Skin{
		ID:     c.ID,
		Source: strings.TrimPrefix(x.Source, "#"),
		Joints: convertSkinInputs(x.Joints),
		Weights: skin.VertexWeights{
			Count:  x.Weights.Count,
			Inputs: convertSkinInputs(x.Weights.Inputs),
		},
	}

	if x.BindShape != nil {
		values, err := parseFloats(*x.BindShape)
		if err != nil {
			l.fail(errors.Wrapf(err, "Failed to parse bind shape matrix of %q", c.ID))
			return nil
		}
		if len(values) != len(s.BindShape) {
			l.fail(errors.Errorf("Bind shape matrix of %q has %d values, expected %d", c.ID, len(values), len(s.BindShape)))
			return nil
		}
		copy(s.BindShape[:], values)
		s.HasBindShape = true
	}

	var err error
	if s.Weights.VCount, err = parseInts(x.Weights.VCount); err != nil {
		l.fail(errors.Wrapf(err, "Failed to parse <vcount> of %q", c.ID))
		return nil
	}
	if s.Weights.V, err = parseInts(x.Weights.V); err != nil {
		l.fail(errors.Wrapf(err, "Failed to parse <v> of %q", c.ID))
		return nil
	}
	return s
}
