// Package skin resolves <skin> controllers into per-influence joint and weight arrays.
package skin

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/accessor"
	"github.com/mogaika/dae_browser/dae/indices"
	"github.com/mogaika/dae_browser/utils"
)

const (
	SemanticJoint         = "JOINT"
	SemanticInvBindMatrix = "INV_BIND_MATRIX"
	SemanticWeight        = "WEIGHT"
	matrixSize            = 16
)

type Input struct {
	Semantic string
	Source   string
	Offset   int
}

type VertexWeights struct {
	Count  int
	Inputs []Input
	VCount []int
	V      []int
}

type Skin struct {
	ID string
	// Source is the id of the skinned geometry.
	Source string
	// BindShape is row-major, as written in <bind_shape_matrix>.
	BindShape    [16]float32
	HasBindShape bool
	Joints       []Input
	Weights      VertexWeights
}

type Result struct {
	Influences VertexInfluenceTable
	JointNames []string
	// InvBindMatrices are row-major, one per joint.
	InvBindMatrices [][16]float32
	BindShape       mgl32.Mat4
}

// InvBindMat4 converts the i-th inverse bind matrix to column-major form.
func (r *Result) InvBindMat4(i int) mgl32.Mat4 {
	return utils.RowMajorToMat4(r.InvBindMatrices[i])
}

func findInput(inputs []Input, semantic string) (Input, bool) {
	for _, in := range inputs {
		if in.Semantic == semantic {
			return in, true
		}
	}
	return Input{}, false
}

// Resolve reads joint names and inverse bind matrices through the source
// accessors and flattens <vertex_weights> into per-influence arrays.
// Joint ids are reported as written, -1 included.
func Resolve(s *Skin, sources *accessor.Registry, log *zap.Logger) (*Result, error) {
	log = dae.Logger(log)

	jointsElement := s.ID + "/joints"
	weightsElement := s.ID + "/vertex_weights"
	jointsInput, ok := findInput(s.Joints, SemanticJoint)
	if !ok {
		return nil, &dae.MissingSemanticError{Element: jointsElement, Semantic: SemanticJoint}
	}
	ibmInput, ok := findInput(s.Joints, SemanticInvBindMatrix)
	if !ok {
		return nil, &dae.MissingSemanticError{Element: jointsElement, Semantic: SemanticInvBindMatrix}
	}
	vJointInput, ok := findInput(s.Weights.Inputs, SemanticJoint)
	if !ok {
		return nil, &dae.MissingSemanticError{Element: weightsElement, Semantic: SemanticJoint}
	}
	weightInput, ok := findInput(s.Weights.Inputs, SemanticWeight)
	if !ok {
		return nil, &dae.MissingSemanticError{Element: weightsElement, Semantic: SemanticWeight}
	}

	if strings.TrimPrefix(vJointInput.Source, "#") != strings.TrimPrefix(jointsInput.Source, "#") {
		log.Warn("vertex weights reference a different joint source than <joints>",
			zap.String("skin", s.ID), zap.String("joints", jointsInput.Source), zap.String("weights", vJointInput.Source))
	}

	result := &Result{BindShape: mgl32.Ident4()}
	if s.HasBindShape {
		result.BindShape = utils.RowMajorToMat4(s.BindShape)
	}

	jointSource, err := sources.Resolve(s.ID, jointsInput.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve joints of skin %q", s.ID)
	}
	if result.JointNames, err = jointSource.Strings(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read joint names of skin %q", s.ID)
	}

	ibmSource, err := sources.Resolve(s.ID, ibmInput.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve inverse bind matrices of skin %q", s.ID)
	}
	ibm, err := ibmSource.Floats()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read inverse bind matrices of skin %q", s.ID)
	}
	if blockSize, _ := ibmSource.BlockSize(); blockSize != matrixSize {
		return nil, errors.Errorf("Skin %q: inverse bind matrix source %q has %d values per record, expected %d",
			s.ID, ibmInput.Source, blockSize, matrixSize)
	}
	result.InvBindMatrices = make([][16]float32, len(ibm)/matrixSize)
	for i := range result.InvBindMatrices {
		copy(result.InvBindMatrices[i][:], ibm[i*matrixSize:])
	}
	if len(result.InvBindMatrices) != len(result.JointNames) {
		log.Warn("inverse bind matrix count differs from joint count",
			zap.String("skin", s.ID), zap.Int("matrices", len(result.InvBindMatrices)), zap.Int("joints", len(result.JointNames)))
	}

	weightSource, err := sources.Resolve(s.ID, weightInput.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to resolve weights of skin %q", s.ID)
	}
	weightValues, err := weightSource.Floats()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read weights of skin %q", s.ID)
	}

	table, err := flatten(s, vJointInput.Offset, weightInput.Offset, weightValues, log)
	if err != nil {
		return nil, err
	}
	result.Influences = *table
	return result, nil
}

func flatten(s *Skin, jointOffset, weightOffset int, weightValues []float32, log *zap.Logger) (*VertexInfluenceTable, error) {
	vw := &s.Weights
	offsets := make([]int, len(vw.Inputs))
	for i, in := range vw.Inputs {
		if in.Offset < 0 {
			return nil, &dae.IndexOutOfRangeError{Element: s.ID + "/vertex_weights", What: in.Semantic + " offset", Index: in.Offset, Len: len(vw.Inputs)}
		}
		offsets[i] = in.Offset
	}
	stride := indices.NumOffsets(offsets)

	if len(vw.VCount) != vw.Count {
		log.Warn("declared vertex count differs from <vcount> entries",
			zap.String("skin", s.ID), zap.Int("declared", vw.Count), zap.Int("observed", len(vw.VCount)))
	}

	for v, n := range vw.VCount {
		if n < 0 {
			return nil, errors.Errorf("Skin %q: negative influence count %d for vertex %d", s.ID, n, v)
		}
	}
	total, need := indices.StreamLength(vw.VCount, stride)
	if len(vw.V) < need {
		return nil, &dae.InconsistentLengthError{Element: s.ID, Need: need, Len: len(vw.V)}
	}

	table := &VertexInfluenceTable{
		Counts:  append([]int(nil), vw.VCount...),
		Joints:  make([]int, total),
		Weights: make([]float32, total),
	}
	for i := 0; i < total; i++ {
		table.Joints[i] = vw.V[jointOffset+stride*i]

		weightIndex := vw.V[weightOffset+stride*i]
		if weightIndex < 0 || weightIndex >= len(weightValues) {
			return nil, &dae.IndexOutOfRangeError{Element: s.ID, What: "weight", Index: weightIndex, Len: len(weightValues)}
		}
		table.Weights[i] = weightValues[weightIndex]
	}
	return table, nil
}
