// Package document loads the geometry and controller libraries of a COLLADA
// file into a flat.Store and the descriptors the decoders work on.
package document

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/config"
	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/accessor"
	"github.com/mogaika/dae_browser/dae/flat"
	"github.com/mogaika/dae_browser/dae/indices"
	"github.com/mogaika/dae_browser/dae/skin"
)

type PrimitiveKind string

const (
	Triangles  PrimitiveKind = "triangles"
	Lines      PrimitiveKind = "lines"
	PolyList   PrimitiveKind = "polylist"
	Polygons   PrimitiveKind = "polygons"
	TriFans    PrimitiveKind = "trifans"
	TriStrips  PrimitiveKind = "tristrips"
	LineStrips PrimitiveKind = "linestrips"
)

var primitiveKinds = map[string]PrimitiveKind{
	"triangles":  Triangles,
	"lines":      Lines,
	"polylist":   PolyList,
	"polygons":   Polygons,
	"trifans":    TriFans,
	"tristrips":  TriStrips,
	"linestrips": LineStrips,
}

// Ragged reports whether the primitive keeps one <p> per group.
func (k PrimitiveKind) Ragged() bool {
	return k == Polygons || k == TriFans || k == TriStrips || k == LineStrips
}

type Input struct {
	Semantic string
	// Source is the referenced id without the leading '#'.
	Source string
	Offset int
	Set    int
}

type Vertices struct {
	ID     string
	Inputs []Input
}

type Primitive struct {
	// Element identifies the primitive in logs and errors, e.g. "cube-mesh/triangles[0]".
	Element  string
	Kind     PrimitiveKind
	Material string
	Count    int
	Window   indices.Window
	Inputs   []Input
	// P is the shared index stream of triangles, lines and polylist.
	P      []int
	VCount []int
	// Groups holds one index list per <p> of the ragged kinds.
	Groups [][]int
}

// Offsets returns the offsets of all inputs.
func (p *Primitive) Offsets() []int {
	offsets := make([]int, len(p.Inputs))
	for i, in := range p.Inputs {
		offsets[i] = in.Offset
	}
	return offsets
}

type Geometry struct {
	ID         string
	Name       string
	Vertices   Vertices
	Primitives []*Primitive
}

type Document struct {
	Version    string
	Store      *flat.Store
	Sources    *accessor.Registry
	Geometries []*Geometry
	Skins      []*skin.Skin
}

func (d *Document) Geometry(id string) *Geometry {
	id = strings.TrimPrefix(id, "#")
	for _, g := range d.Geometries {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (d *Document) Skin(id string) *skin.Skin {
	id = strings.TrimPrefix(id, "#")
	for _, s := range d.Skins {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// SkinFor returns the first skin controller bound to the geometry.
func (d *Document) SkinFor(geometryID string) *skin.Skin {
	geometryID = strings.TrimPrefix(geometryID, "#")
	for _, s := range d.Skins {
		if strings.TrimPrefix(s.Source, "#") == geometryID {
			return s
		}
	}
	return nil
}

func LoadFile(path string, log *zap.Logger) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	defer f.Close()
	return Load(f, log)
}

// Load decodes a COLLADA document. Elements that fail to decode are
// collected and reported together, no partial document is returned then.
func Load(r io.Reader, log *zap.Logger) (*Document, error) {
	log = dae.Logger(log)

	var raw xmlCollada
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = config.CharsetReader
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode COLLADA xml")
	}

	l := &loader{
		log:     log,
		arrays:  flat.NewBuilder(),
		sources: make(map[string]*accessor.Descriptor),
	}
	doc := &Document{Version: raw.Version}

	for _, g := range raw.Geometries {
		if g.Mesh == nil {
			log.Debug("skipping geometry without <mesh>", zap.String("geometry", g.ID))
			continue
		}
		for i := range g.Mesh.Sources {
			l.addSource(&g.Mesh.Sources[i])
		}
		if geometry := l.geometry(&g); geometry != nil {
			doc.Geometries = append(doc.Geometries, geometry)
		}
	}

	for _, c := range raw.Controllers {
		if c.Skin == nil {
			log.Debug("skipping controller without <skin>", zap.String("controller", c.ID))
			continue
		}
		for i := range c.Skin.Sources {
			l.addSource(&c.Skin.Sources[i])
		}
		if s := l.skin(&c); s != nil {
			doc.Skins = append(doc.Skins, s)
		}
	}

	if l.errs != nil {
		return nil, l.errs
	}

	doc.Store = l.arrays.Build()
	doc.Sources = accessor.NewRegistry(doc.Store, l.sources)
	return doc, nil
}
