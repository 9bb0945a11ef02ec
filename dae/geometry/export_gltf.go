package geometry

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/document"
	"github.com/mogaika/dae_browser/dae/skin"
	"github.com/mogaika/dae_browser/utils"
	"github.com/mogaika/dae_browser/utils/gltfutils"
)

type ExportOptions struct {
	// MaxInfluences is the number of joints kept per vertex, at most 4.
	MaxInfluences int
	// FlipV converts texture coordinates to the top-left origin of glTF.
	FlipV bool
}

type exporter struct {
	doc       *document.Document
	gdoc      *gltf.Document
	opts      ExportOptions
	log       *zap.Logger
	materials map[string]uint32
}

// ExportGLTF writes meshes, and the skins bound to them, into a new glTF document.
func ExportGLTF(doc *document.Document, meshes []*Mesh, opts ExportOptions, log *zap.Logger) (*gltf.Document, error) {
	if opts.MaxInfluences < 1 || opts.MaxInfluences > 4 {
		opts.MaxInfluences = 4
	}
	e := &exporter{
		doc:       doc,
		gdoc:      gltfutils.NewDocument(),
		opts:      opts,
		log:       dae.Logger(log),
		materials: make(map[string]uint32),
	}
	for _, m := range meshes {
		if err := e.exportMesh(m); err != nil {
			return nil, errors.Wrapf(err, "Failed to export mesh %q", m.ID)
		}
	}
	return e.gdoc, nil
}

func (e *exporter) material(name string) *uint32 {
	if name == "" {
		return nil
	}
	if index, ok := e.materials[name]; ok {
		return gltf.Index(index)
	}
	index := uint32(len(e.gdoc.Materials))
	e.gdoc.Materials = append(e.gdoc.Materials, &gltf.Material{
		Name:        name,
		DoubleSided: true,
	})
	e.materials[name] = index
	return gltf.Index(index)
}

func (e *exporter) exportMesh(m *Mesh) error {
	var skinned *skin.Result
	var skinIndex *uint32
	if s := e.doc.SkinFor(m.ID); s != nil {
		var err error
		if skinned, err = skin.Resolve(s, e.doc.Sources, e.log); err != nil {
			return err
		}
		skinIndex = gltf.Index(e.exportSkin(s.ID, skinned))
	}

	gm := &gltf.Mesh{Name: m.Name}
	if gm.Name == "" {
		gm.Name = m.ID
	}

	for _, prim := range m.Primitives {
		attributes := make(map[string]uint32)

		positions := make([][3]float32, len(prim.Positions))
		for i, pos := range prim.Positions {
			if skinned != nil {
				pos = skinned.BindShape.Mul4x1(pos.Vec4(1)).Vec3()
			}
			positions[i] = pos
		}
		attributes["POSITION"] = modeler.WritePosition(e.gdoc, positions)

		if prim.Normals != nil {
			normals := make([][3]float32, len(prim.Normals))
			for i, normal := range prim.Normals {
				if normal.Len() > 0.5 {
					normal = normal.Normalize()
				}
				normals[i] = normal
			}
			attributes["NORMAL"] = modeler.WriteNormal(e.gdoc, normals)
		}

		for iLayer, layer := range prim.UVs {
			uvs := make([][2]float32, len(layer))
			for i, uv := range layer {
				if e.opts.FlipV {
					uv[1] = 1 - uv[1]
				}
				uvs[i] = uv
			}
			attributes[fmt.Sprintf("TEXCOORD_%d", iLayer)] = modeler.WriteTextureCoord(e.gdoc, uvs)
		}

		if prim.Colors != nil {
			colors := make([][4]uint8, len(prim.Colors))
			for i, c := range prim.Colors {
				colors[i] = utils.ColorToRGBA8(c)
			}
			attributes["COLOR_0"] = modeler.WriteColor(e.gdoc, colors)
		}

		if skinned != nil {
			joints, weights, err := e.influences(prim, skinned)
			if err != nil {
				return err
			}
			attributes["JOINTS_0"] = modeler.WriteJoints(e.gdoc, joints)
			attributes["WEIGHTS_0"] = modeler.WriteWeights(e.gdoc, weights)
		}

		mode := gltf.PrimitiveTriangles
		if prim.Mode == ModeLines {
			mode = gltf.PrimitiveLines
		}
		indicesAccessor := modeler.WriteIndices(e.gdoc, prim.Indices)
		gm.Primitives = append(gm.Primitives, &gltf.Primitive{
			Indices:    &indicesAccessor,
			Attributes: attributes,
			Mode:       mode,
			Material:   e.material(prim.Material),
		})
	}

	e.gdoc.Meshes = append(e.gdoc.Meshes, gm)
	e.gdoc.Nodes = append(e.gdoc.Nodes, &gltf.Node{
		Name: gm.Name,
		Mesh: gltf.Index(uint32(len(e.gdoc.Meshes) - 1)),
		Skin: skinIndex,
	})
	return nil
}

// exportSkin adds one node per joint. The joints are left flat, the
// hierarchy lives in visual scenes which are not imported.
func (e *exporter) exportSkin(id string, r *skin.Result) uint32 {
	gs := &gltf.Skin{Name: id}
	for _, name := range r.JointNames {
		gs.Joints = append(gs.Joints, uint32(len(e.gdoc.Nodes)))
		e.gdoc.Nodes = append(e.gdoc.Nodes, &gltf.Node{Name: name})
	}

	if len(r.InvBindMatrices) == len(r.JointNames) {
		matrices := make([][4][4]float32, len(r.InvBindMatrices))
		for i := range r.InvBindMatrices {
			matrices[i] = utils.Mat4ToColumns(r.InvBindMat4(i))
		}
		gs.InverseBindMatrices = gltf.Index(modeler.WriteAccessor(e.gdoc, gltf.TargetNone, matrices))
	} else {
		e.log.Warn("skipping inverse bind matrices, count differs from joints", zap.String("skin", id))
	}

	e.gdoc.Skins = append(e.gdoc.Skins, gs)
	return uint32(len(e.gdoc.Skins) - 1)
}

// influences maps every vertex of prim to the influences of its position.
// Joint -1 binds to the bind shape and is dropped, glTF has no equivalent.
func (e *exporter) influences(prim *Primitive, r *skin.Result) ([][4]uint16, [][4]float32, error) {
	table := r.Influences.Limit(e.opts.MaxInfluences)
	starts := table.Starts()

	joints := make([][4]uint16, len(prim.PositionIndex))
	weights := make([][4]float32, len(prim.PositionIndex))
	for i, v := range prim.PositionIndex {
		if v >= len(table.Counts) {
			return nil, nil, &dae.IndexOutOfRangeError{Element: prim.Element, What: "skinned vertex", Index: v, Len: len(table.Counts)}
		}
		slot := 0
		for k := starts[v]; k < starts[v]+table.Counts[v]; k++ {
			joint := table.Joints[k]
			if joint < 0 {
				continue
			}
			if joint >= len(r.JointNames) {
				return nil, nil, &dae.IndexOutOfRangeError{Element: prim.Element, What: "joint", Index: joint, Len: len(r.JointNames)}
			}
			joints[i][slot] = uint16(joint)
			weights[i][slot] = table.Weights[k]
			slot++
		}
		if slot == 0 {
			e.log.Debug("vertex without joint influences", zap.String("element", prim.Element), zap.Int("vertex", v))
		}
	}
	return joints, weights, nil
}
