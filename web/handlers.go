package web

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_browser/config"
	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/accessor"
	"github.com/mogaika/dae_browser/dae/flat"
	"github.com/mogaika/dae_browser/dae/geometry"
	"github.com/mogaika/dae_browser/dae/skin"
	"github.com/mogaika/dae_browser/utils"
	"github.com/mogaika/dae_browser/utils/gltfutils"
	"github.com/mogaika/dae_browser/webutils"
)

type jsonPrimitive struct {
	Element  string `json:"element"`
	Kind     string `json:"kind"`
	Material string `json:"material,omitempty"`
	Count    int    `json:"count"`
}

type jsonGeometry struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	Skin       string          `json:"skin,omitempty"`
	Primitives []jsonPrimitive `json:"primitives"`
}

type jsonSource struct {
	ID     string      `json:"id"`
	Array  string      `json:"array"`
	Kind   string      `json:"kind"`
	Count  int         `json:"count"`
	Stride int         `json:"stride"`
	Fields []string    `json:"fields"`
	Values interface{} `json:"values"`
}

type jsonSkin struct {
	ID              string        `json:"id"`
	Source          string        `json:"source"`
	JointNames      []string      `json:"joint_names"`
	InvBindMatrices [][16]float32 `json:"inv_bind_matrices"`
	BindShape       [16]float32   `json:"bind_shape"`
	Counts          []int         `json:"counts"`
	Joints          []int         `json:"joints"`
	Weights         []float32     `json:"weights"`
}

func (s *server) HandlerAjaxGeometries(w http.ResponseWriter, r *http.Request) {
	result := make([]jsonGeometry, 0, len(s.doc.Geometries))
	for _, g := range s.doc.Geometries {
		jg := jsonGeometry{ID: g.ID, Name: g.Name, Primitives: make([]jsonPrimitive, len(g.Primitives))}
		if sk := s.doc.SkinFor(g.ID); sk != nil {
			jg.Skin = sk.ID
		}
		for i, p := range g.Primitives {
			jg.Primitives[i] = jsonPrimitive{Element: p.Element, Kind: string(p.Kind), Material: p.Material, Count: p.Count}
		}
		result = append(result, jg)
	}
	webutils.WriteJson(w, result)
}

func (s *server) buildGeometry(w http.ResponseWriter, r *http.Request) *geometry.Mesh {
	id := mux.Vars(r)["id"]
	g := s.doc.Geometry(id)
	if g == nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("Geometry %q not found", id))
		return nil
	}
	m, err := geometry.Build(s.doc, g, s.log)
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to build geometry %q", id))
		return nil
	}
	return m
}

func (s *server) HandlerAjaxGeometry(w http.ResponseWriter, r *http.Request) {
	if m := s.buildGeometry(w, r); m != nil {
		webutils.WriteJson(w, m)
	}
}

func (s *server) HandlerDumpGeometry(w http.ResponseWriter, r *http.Request) {
	if m := s.buildGeometry(w, r); m != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		utils.DumpTo(w, m)
	}
}

func (s *server) HandlerExportGeometry(w http.ResponseWriter, r *http.Request) {
	m := s.buildGeometry(w, r)
	if m == nil {
		return
	}
	opts := config.Get()
	doc, err := geometry.ExportGLTF(s.doc, []*geometry.Mesh{m},
		geometry.ExportOptions{MaxInfluences: opts.MaxInfluences, FlipV: opts.FlipV}, s.log)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := gltfutils.ExportBinary(&buf, doc); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, &buf, m.ID+".glb")
}

func (s *server) HandlerAjaxSkin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sk := s.doc.Skin(id)
	if sk == nil {
		webutils.WriteErrorStatus(w, http.StatusNotFound, errors.Errorf("Skin %q not found", id))
		return
	}
	res, err := skin.Resolve(sk, s.doc.Sources, s.log)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, &jsonSkin{
		ID:              sk.ID,
		Source:          sk.Source,
		JointNames:      res.JointNames,
		InvBindMatrices: res.InvBindMatrices,
		BindShape:       sk.BindShape,
		Counts:          res.Influences.Counts,
		Joints:          res.Influences.Joints,
		Weights:         res.Influences.Weights,
	})
}

func (s *server) HandlerAjaxSources(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.doc.Sources.IDs())
}

func (s *server) HandlerAjaxSource(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := s.doc.Sources.Resolve("web", id)
	if err != nil {
		var undefined *dae.UndefinedSourceError
		if errors.As(err, &undefined) {
			webutils.WriteErrorStatus(w, http.StatusNotFound, err)
		} else {
			webutils.WriteError(w, err)
		}
		return
	}

	var fields []string
	if q := r.URL.Query().Get("fields"); q != "" {
		fields = strings.Split(q, ",")
	}
	values, err := sourceValues(res, fields)
	if err != nil {
		var unknown *dae.UnknownFieldError
		if errors.As(err, &unknown) {
			webutils.WriteErrorStatus(w, http.StatusBadRequest, err)
		} else {
			webutils.WriteError(w, err)
		}
		return
	}

	if fields == nil {
		for _, f := range res.Descriptor().Fields {
			if f.Name != "" {
				fields = append(fields, f.Name)
			}
		}
	}
	webutils.WriteJson(w, &jsonSource{
		ID:     res.Descriptor().Owner,
		Array:  res.Array().ID,
		Kind:   res.Array().Kind.String(),
		Count:  res.Count(),
		Stride: res.Stride(),
		Fields: fields,
		Values: values,
	})
}

func sourceValues(res *accessor.Resolved, fields []string) (interface{}, error) {
	switch res.Array().Kind {
	case flat.Float:
		return res.Floats(fields...)
	case flat.Int:
		return res.Ints(fields...)
	case flat.Bool:
		return res.Bools(fields...)
	default:
		return res.Strings(fields...)
	}
}
