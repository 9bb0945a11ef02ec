package skin

import (
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/accessor"
	"github.com/mogaika/dae_browser/dae/flat"
)

func newRegistry(t *testing.T, weights []float32) *accessor.Registry {
	b := flat.NewBuilder()
	b.AddNames("joints-array", []string{"root", "spine", "head"})

	ibm := make([]float32, 0, 48)
	for i := 0; i < 3; i++ {
		m := mgl32.Translate3D(float32(i), 0, 0).Transpose()
		ibm = append(ibm, m[:]...)
	}
	b.AddFloats("ibm-array", ibm)
	b.AddFloats("weights-array", weights)

	newDesc := func(owner, array string, count, stride int, params ...accessor.Param) *accessor.Descriptor {
		d, err := accessor.NewDescriptor(owner, "#"+array, count, 0, stride, params)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	return accessor.NewRegistry(b.Build(), map[string]*accessor.Descriptor{
		"joints":  newDesc("joints", "joints-array", 3, 1, accessor.Param{Name: "JOINT", Type: "Name"}),
		"ibm":     newDesc("ibm", "ibm-array", 3, 16, accessor.Param{Name: "TRANSFORM", Type: "float4x4"}),
		"weights": newDesc("weights", "weights-array", len(weights), 1, accessor.Param{Name: "WEIGHT", Type: "float"}),
	})
}

func newSkin() *Skin {
	return &Skin{
		ID:     "skin",
		Source: "#mesh",
		Joints: []Input{
			{Semantic: SemanticJoint, Source: "#joints"},
			{Semantic: SemanticInvBindMatrix, Source: "#ibm"},
		},
		Weights: VertexWeights{
			Count: 2,
			Inputs: []Input{
				{Semantic: SemanticJoint, Source: "#joints", Offset: 0},
				{Semantic: SemanticWeight, Source: "#weights", Offset: 1},
			},
			VCount: []int{1, 2},
			V:      []int{2, 0, 0, 1, 1, 2},
		},
	}
}

func TestResolve(t *testing.T) {
	reg := newRegistry(t, []float32{0.2, 0.5, 0.3})
	core, logs := observer.New(zap.WarnLevel)

	r, err := Resolve(newSkin(), reg, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}
	inf := r.Influences
	if !reflect.DeepEqual(inf.Joints, []int{2, 0, 1}) {
		t.Errorf("Joints=%v; expected [2 0 1]", inf.Joints)
	}
	if !reflect.DeepEqual(inf.Weights, []float32{0.2, 0.5, 0.3}) {
		t.Errorf("Weights=%v; expected [0.2 0.5 0.3]", inf.Weights)
	}
	sum := 0
	for _, n := range inf.Counts {
		sum += n
	}
	if sum != 3 || len(inf.Joints) != 3 || len(inf.Weights) != 3 {
		t.Errorf("sum(vcount)=%d len(joints)=%d len(weights)=%d; expected all 3", sum, len(inf.Joints), len(inf.Weights))
	}
	if !reflect.DeepEqual(r.JointNames, []string{"root", "spine", "head"}) {
		t.Errorf("JointNames=%v", r.JointNames)
	}
	if len(r.InvBindMatrices) != 3 {
		t.Fatalf("len(InvBindMatrices)=%d; expected 3", len(r.InvBindMatrices))
	}
	if m := r.InvBindMat4(2); !m.ApproxEqual(mgl32.Translate3D(2, 0, 0)) {
		t.Errorf("InvBindMat4(2)=%v; expected translation by 2", m)
	}
	if r.BindShape != mgl32.Ident4() {
		t.Errorf("BindShape=%v; expected identity", r.BindShape)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected warnings: %v", logs.All())
	}
}

func TestResolveRawJointIDs(t *testing.T) {
	reg := newRegistry(t, []float32{1})
	s := newSkin()
	s.Weights.VCount = []int{1}
	s.Weights.Count = 3
	s.Weights.V = []int{-1, 0}
	core, logs := observer.New(zap.WarnLevel)

	r, err := Resolve(s, reg, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}
	if r.Influences.Joints[0] != -1 {
		t.Errorf("Joints[0]=%d; expected raw -1", r.Influences.Joints[0])
	}
	if logs.FilterMessage("declared vertex count differs from <vcount> entries").Len() != 1 {
		t.Errorf("missing vertex count warning")
	}
}

func TestResolveErrors(t *testing.T) {
	reg := newRegistry(t, []float32{0.2, 0.5, 0.3})

	var missingTests = []struct {
		drop     func(s *Skin)
		semantic string
		element  string
	}{
		{func(s *Skin) { s.Joints = s.Joints[1:] }, SemanticJoint, "skin/joints"},
		{func(s *Skin) { s.Joints = s.Joints[:1] }, SemanticInvBindMatrix, "skin/joints"},
		{func(s *Skin) { s.Weights.Inputs = s.Weights.Inputs[1:] }, SemanticJoint, "skin/vertex_weights"},
		{func(s *Skin) { s.Weights.Inputs = s.Weights.Inputs[:1] }, SemanticWeight, "skin/vertex_weights"},
	}
	for _, test := range missingTests {
		s := newSkin()
		test.drop(s)
		_, err := Resolve(s, reg, nil)
		var missing *dae.MissingSemanticError
		if !errors.As(err, &missing) || missing.Semantic != test.semantic || missing.Element != test.element {
			t.Errorf("Resolve without %s error=%v; expected MissingSemanticError in %s", test.semantic, err, test.element)
		}
	}

	for _, i := range []int{0, 1} {
		s := newSkin()
		s.Weights.Inputs[i].Offset = -1
		_, err := Resolve(s, reg, nil)
		var badOffset *dae.IndexOutOfRangeError
		if !errors.As(err, &badOffset) || badOffset.Index != -1 || badOffset.Element != "skin/vertex_weights" {
			t.Errorf("Resolve with %s offset -1 error=%v; expected IndexOutOfRangeError", s.Weights.Inputs[i].Semantic, err)
		}
	}

	s := newSkin()
	s.Weights.V = []int{2, 0, 0, 1, 1, 3}
	_, err := Resolve(s, reg, nil)
	var outOfRange *dae.IndexOutOfRangeError
	if !errors.As(err, &outOfRange) || outOfRange.Index != 3 || outOfRange.Len != 3 {
		t.Errorf("Resolve with weight index 3 error=%v; expected IndexOutOfRangeError", err)
	}

	s = newSkin()
	s.Weights.V = s.Weights.V[:5]
	_, err = Resolve(s, reg, nil)
	var inconsistent *dae.InconsistentLengthError
	if !errors.As(err, &inconsistent) {
		t.Errorf("Resolve with short <v> error=%v; expected InconsistentLengthError", err)
	}

	s = newSkin()
	s.Weights.VCount = []int{math.MaxInt / 2, math.MaxInt / 2}
	_, err = Resolve(s, reg, nil)
	if !errors.As(err, &inconsistent) || inconsistent.Need != math.MaxInt {
		t.Errorf("Resolve with overflowing <vcount> error=%v; expected InconsistentLengthError", err)
	}

	s = newSkin()
	s.Joints[0].Source = "#nowhere"
	_, err = Resolve(s, reg, nil)
	var undefined *dae.UndefinedSourceError
	if !errors.As(err, &undefined) || undefined.Source != "nowhere" {
		t.Errorf("Resolve with unknown joint source error=%v; expected UndefinedSourceError", err)
	}
}

func TestLimit(t *testing.T) {
	table := &VertexInfluenceTable{
		Counts:  []int{3, 1, 0},
		Joints:  []int{0, 1, 2, 5},
		Weights: []float32{0.5, 0.2, 0.3, 1},
	}
	limited := table.Limit(2)
	if !reflect.DeepEqual(limited.Counts, []int{2, 1, 0}) {
		t.Errorf("Counts=%v; expected [2 1 0]", limited.Counts)
	}
	if !reflect.DeepEqual(limited.Joints, []int{0, 2, 5}) {
		t.Errorf("Joints=%v; expected [0 2 5]", limited.Joints)
	}
	joints, weights := limited.Influences(0)
	if len(joints) != 2 || weights[0]+weights[1] < 0.999 || weights[0]+weights[1] > 1.001 {
		t.Errorf("Influences(0)=%v,%v; expected two weights summing to 1", joints, weights)
	}
	if s := table.Starts(); !reflect.DeepEqual(s, []int{0, 3, 4}) {
		t.Errorf("Starts()=%v; expected [0 3 4]", s)
	}
	if joints, _ := table.Influences(1); !reflect.DeepEqual(joints, []int{5}) {
		t.Errorf("Influences(1)=%v; expected [5]", joints)
	}
	if joints, _ := table.Influences(2); len(joints) != 0 {
		t.Errorf("Influences(2)=%v; expected none", joints)
	}
}
