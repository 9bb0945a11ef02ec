// Package geometry turns COLLADA mesh primitives into flat vertex streams.
//
// Every corner of every primitive becomes its own vertex, so streams can be
// uploaded or exported without a second index per attribute.
package geometry

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/document"
	"github.com/mogaika/dae_browser/dae/indices"
)

type Mode int

const (
	ModeTriangles Mode = iota
	ModeLines
)

type Primitive struct {
	Element  string
	Kind     document.PrimitiveKind
	Mode     Mode
	Material string

	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	// UVs holds one layer per TEXCOORD set, ordered by set.
	UVs    [][]mgl32.Vec2
	Colors []mgl32.Vec4
	// PositionIndex maps every vertex back to its record in the position
	// source, which is also the vertex index used by skin controllers.
	PositionIndex []int

	// Indices is a triangle or line list over the vertices.
	Indices           []uint32
	GroupVertexCounts []int
}

func (p *Primitive) VertexCount() int { return len(p.Positions) }

type Mesh struct {
	ID         string
	Name       string
	Primitives []*Primitive
}

// binding is an input after <vertices> expansion.
type binding struct {
	semantic string
	source   string
	offset   int
	set      int
}

func bindings(g *document.Geometry, p *document.Primitive, log *zap.Logger) []binding {
	result := make([]binding, 0, len(p.Inputs)+2)
	for _, in := range p.Inputs {
		if in.Semantic != "VERTEX" {
			result = append(result, binding{in.Semantic, in.Source, in.Offset, in.Set})
			continue
		}
		if in.Source != g.Vertices.ID {
			log.Warn("VERTEX input does not reference the mesh <vertices>",
				zap.String("element", p.Element), zap.String("source", in.Source), zap.String("vertices", g.Vertices.ID))
		}
		for _, vin := range g.Vertices.Inputs {
			result = append(result, binding{vin.Semantic, vin.Source, in.Offset, vin.Set})
		}
	}
	return result
}

func deinterleave(p *document.Primitive, log *zap.Logger) (*indices.Deinterleaved, error) {
	numOffsets := indices.NumOffsets(p.Offsets())
	switch p.Kind {
	case document.Triangles:
		return indices.Fixed(p.Element, p.P, numOffsets, indices.TriangleVertices, p.Window, log)
	case document.Lines:
		return indices.Fixed(p.Element, p.P, numOffsets, indices.LineVertices, p.Window, log)
	case document.PolyList:
		return indices.PolyList(p.Element, p.VCount, p.P, numOffsets, p.Count, log)
	default:
		return indices.Groups(p.Element, p.Groups, numOffsets, p.Count, log)
	}
}

// Build assembles all primitives of g.
func Build(doc *document.Document, g *document.Geometry, log *zap.Logger) (*Mesh, error) {
	log = dae.Logger(log)
	m := &Mesh{ID: g.ID, Name: g.Name}
	for _, p := range g.Primitives {
		prim, err := buildPrimitive(doc, g, p, log)
		if err != nil {
			return nil, err
		}
		m.Primitives = append(m.Primitives, prim)
	}
	return m, nil
}

func buildPrimitive(doc *document.Document, g *document.Geometry, p *document.Primitive, log *zap.Logger) (*Primitive, error) {
	d, err := deinterleave(p, log)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to deinterleave %q", p.Element)
	}

	prim := &Primitive{
		Element:           p.Element,
		Kind:              p.Kind,
		Material:          p.Material,
		GroupVertexCounts: d.GroupVertexCounts,
	}
	if p.Kind == document.Lines || p.Kind == document.LineStrips {
		prim.Mode = ModeLines
	}

	uvSets := make(map[int][]mgl32.Vec2)
	hasPosition := false
	for _, b := range bindings(g, p, log) {
		if b.offset >= d.NumOffsets || b.offset < 0 {
			return nil, &dae.IndexOutOfRangeError{Element: p.Element, What: b.semantic + " offset", Index: b.offset, Len: d.NumOffsets}
		}
		idx := d.Offsets[b.offset]

		switch b.semantic {
		case "POSITION":
			values, err := gatherVectors(doc, p.Element, b, idx, 3, []string{"X", "Y", "Z"})
			if err != nil {
				return nil, err
			}
			prim.Positions = toVec3(values)
			prim.PositionIndex = append([]int(nil), idx...)
			hasPosition = true
		case "NORMAL":
			values, err := gatherVectors(doc, p.Element, b, idx, 3, []string{"X", "Y", "Z"})
			if err != nil {
				return nil, err
			}
			prim.Normals = toVec3(values)
		case "TEXCOORD":
			values, err := gatherVectors(doc, p.Element, b, idx, 2, []string{"S", "T"})
			if err != nil {
				return nil, err
			}
			uvSets[b.set] = toVec2(values)
		case "COLOR":
			values, err := gatherColors(doc, p.Element, b, idx)
			if err != nil {
				return nil, err
			}
			prim.Colors = values
		default:
			log.Debug("ignoring input", zap.String("element", p.Element), zap.String("semantic", b.semantic))
		}
	}
	if !hasPosition {
		return nil, &dae.MissingSemanticError{Element: p.Element, Semantic: "POSITION"}
	}

	sets := make([]int, 0, len(uvSets))
	for set := range uvSets {
		sets = append(sets, set)
	}
	sort.Ints(sets)
	for _, set := range sets {
		prim.UVs = append(prim.UVs, uvSets[set])
	}

	prim.Indices = topology(p.Kind, d)
	return prim, nil
}

// BuildAll builds every geometry of doc. Failures do not stop the other
// geometries, all errors are returned together.
func BuildAll(doc *document.Document, parallel bool, log *zap.Logger) ([]*Mesh, error) {
	meshes := make([]*Mesh, len(doc.Geometries))
	errs := make([]error, len(doc.Geometries))

	if parallel {
		var wg sync.WaitGroup
		for i, g := range doc.Geometries {
			wg.Add(1)
			go func(i int, g *document.Geometry) {
				defer wg.Done()
				meshes[i], errs[i] = Build(doc, g, log)
			}(i, g)
		}
		wg.Wait()
	} else {
		for i, g := range doc.Geometries {
			meshes[i], errs[i] = Build(doc, g, log)
		}
	}

	var err error
	result := make([]*Mesh, 0, len(meshes))
	for i, m := range meshes {
		if errs[i] != nil {
			err = multierr.Append(err, errors.Wrapf(errs[i], "Failed to build geometry %q", doc.Geometries[i].ID))
			continue
		}
		result = append(result, m)
	}
	return result, err
}
