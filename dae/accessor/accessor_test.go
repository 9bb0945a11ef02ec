package accessor

import (
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/flat"
)

func newStore(t *testing.T) *flat.Store {
	b := flat.NewBuilder()
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(b.AddFloats("nine", []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	must(b.AddFloats("padded", []float32{1, 2, 0, 3, 4, 0, 5, 6, 0}))
	must(b.AddNames("names", []string{"hip", "knee", "foot"}))
	must(b.AddInts("ints", []int{10, 20, 30, 40}))
	must(b.AddBools("bools", []bool{true, false}))
	return b.Build()
}

func xyz() []Param {
	return []Param{{"X", "float"}, {"Y", "float"}, {"Z", "float"}}
}

func resolve(t *testing.T, store *flat.Store, source string, count, offset, stride int, params []Param) *Resolved {
	d, err := NewDescriptor(source+"-accessor", "#"+source, count, offset, stride, params)
	if err != nil {
		t.Fatal(err)
	}
	r, err := d.Resolve(store)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestFastPathIdentity(t *testing.T) {
	store := newStore(t)
	r := resolve(t, store, "nine", 3, 0, 3, xyz())

	out, err := r.Floats()
	if err != nil {
		t.Fatal(err)
	}
	src, _ := store.Lookup("nine")
	if !reflect.DeepEqual(out, src.Floats) {
		t.Fatalf("Floats()=%v; expected %v", out, src.Floats)
	}
	out[0] = 100
	if src.Floats[0] != 1 {
		t.Errorf("Floats() returned the store slice instead of a copy")
	}
}

var extractTests = []struct {
	source string
	count  int
	offset int
	stride int
	params []Param
	fields []string
	out    []float32
}{
	{"nine", 3, 0, 3, xyz(), []string{"Z", "X"}, []float32{3, 1, 6, 4, 9, 7}},
	{"nine", 3, 0, 3, xyz(), []string{"z", "y", "x"}, []float32{3, 2, 1, 6, 5, 4, 9, 8, 7}},
	{"nine", 3, 0, 3, xyz(), []string{"X", "Y"}, []float32{1, 2, 4, 5, 7, 8}},
	{"nine", 4, 1, 2, []Param{{"S", "float"}, {"T", "float"}}, nil, []float32{2, 3, 4, 5, 6, 7, 8, 9}},
	{"padded", 3, 0, 3, []Param{{"U", "float"}, {"V", "float"}}, nil, []float32{1, 2, 3, 4, 5, 6}},
	{"padded", 3, 0, 3, []Param{{"", "float"}, {"V", "float"}}, nil, []float32{2, 4, 6}},
	{"nine", 2, 0, 4, []Param{{"", "float"}, {"TIME", "float2"}}, nil, []float32{2, 3, 6, 7}},
	{"nine", 0, 0, 3, xyz(), nil, []float32{}},
}

func TestExtract(t *testing.T) {
	store := newStore(t)
	for _, test := range extractTests {
		r := resolve(t, store, test.source, test.count, test.offset, test.stride, test.params)
		out, err := r.Floats(test.fields...)
		if err != nil {
			t.Errorf("%s Floats(%v) error: %v", test.source, test.fields, err)
			continue
		}
		if !reflect.DeepEqual(out, test.out) {
			t.Errorf("%s Floats(%v)=%v; expected %v", test.source, test.fields, out, test.out)
		}
		blockSize, _ := r.BlockSize(test.fields...)
		if len(out) != test.count*blockSize {
			t.Errorf("%s Floats(%v) len=%d; expected count*blockSize=%d", test.source, test.fields, len(out), test.count*blockSize)
		}
	}
}

func TestMatrixParam(t *testing.T) {
	b := flat.NewBuilder()
	values := make([]float32, 32)
	for i := range values {
		values[i] = float32(i)
	}
	b.AddFloats("ibm", values)
	r := resolve(t, b.Build(), "ibm", 2, 0, 16, []Param{{"TRANSFORM", "float4x4"}})
	out, err := r.Floats()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 32 || out[16] != 16 {
		t.Errorf("Floats() of float4x4=%v; expected 32 sequential values", out)
	}
}

func TestOtherKinds(t *testing.T) {
	store := newStore(t)

	names, err := resolve(t, store, "names", 3, 0, 1, []Param{{"JOINT", "Name"}}).Strings()
	if err != nil || !reflect.DeepEqual(names, []string{"hip", "knee", "foot"}) {
		t.Errorf("Strings()=%v,%v; expected [hip knee foot]", names, err)
	}
	ints, err := resolve(t, store, "ints", 2, 0, 2, []Param{{"A", "int"}, {"B", "int"}}).Ints("B")
	if err != nil || !reflect.DeepEqual(ints, []int{20, 40}) {
		t.Errorf("Ints(B)=%v,%v; expected [20 40]", ints, err)
	}
	bools, err := resolve(t, store, "bools", 2, 0, 1, []Param{{"V", "bool"}}).Bools()
	if err != nil || !reflect.DeepEqual(bools, []bool{true, false}) {
		t.Errorf("Bools()=%v,%v; expected [true false]", bools, err)
	}
}

func TestErrors(t *testing.T) {
	store := newStore(t)

	d, _ := NewDescriptor("missing-accessor", "#missing", 1, 0, 1, xyz())
	_, err := d.Resolve(store)
	var undefined *dae.UndefinedArrayError
	if !errors.As(err, &undefined) || undefined.Array != "missing" {
		t.Errorf("Resolve(missing) error=%v; expected UndefinedArrayError", err)
	}

	d, _ = NewDescriptor("long-accessor", "#nine", 4, 0, 3, xyz())
	_, err = d.Resolve(store)
	var bounds *dae.OutOfBoundsError
	if !errors.As(err, &bounds) || bounds.Need != 12 || bounds.Len != 9 {
		t.Errorf("Resolve(long) error=%v; expected OutOfBoundsError 12/9", err)
	}

	var overflowTests = []struct {
		count, offset, stride int
	}{
		{1<<62 + 1, 0, 4},
		{math.MaxInt, 0, 3},
		{2, math.MaxInt - 1, 1},
	}
	for _, test := range overflowTests {
		d, _ = NewDescriptor("huge-accessor", "#nine", test.count, test.offset, test.stride, xyz())
		_, err = d.Resolve(store)
		if !errors.As(err, &bounds) || bounds.Need != math.MaxInt || bounds.Len != 9 {
			t.Errorf("Resolve(count=%d offset=%d stride=%d) error=%v; expected OutOfBoundsError",
				test.count, test.offset, test.stride, err)
		}
	}

	d, _ = NewDescriptor("dup-accessor", "#nine", 3, 0, 3, []Param{{"X", "float"}, {"x", "float"}, {"Z", "float"}})
	_, err = d.Resolve(store)
	var dup *dae.DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Errorf("Resolve(dup) error=%v; expected DuplicateFieldError", err)
	}

	r := resolve(t, store, "nine", 3, 0, 3, xyz())
	_, err = r.Floats("X", "W")
	var unknown *dae.UnknownFieldError
	if !errors.As(err, &unknown) || unknown.Field != "W" {
		t.Errorf("Floats(X,W) error=%v; expected UnknownFieldError for W", err)
	}

	_, err = r.Ints()
	var kind *dae.KindMismatchError
	if !errors.As(err, &kind) {
		t.Errorf("Ints() on float array error=%v; expected KindMismatchError", err)
	}

	if _, err := NewDescriptor("neg", "#nine", -1, 0, 1, nil); err == nil {
		t.Errorf("NewDescriptor with negative count succeeded")
	}
}

func TestTypeSize(t *testing.T) {
	var sizeTests = []struct {
		typ  string
		size int
		ok   bool
	}{
		{"float", 1, true},
		{"Name", 1, true},
		{"IDREF", 1, true},
		{"float4x4", 16, true},
		{"float3", 3, true},
		{"half", 1, false},
	}
	for _, test := range sizeTests {
		size, ok := TypeSize(test.typ)
		if size != test.size || ok != test.ok {
			t.Errorf("TypeSize(%q)=%d,%v; expected %d,%v", test.typ, size, ok, test.size, test.ok)
		}
	}
}

func TestRegistry(t *testing.T) {
	store := newStore(t)
	d, _ := NewDescriptor("positions", "#nine", 3, 0, 3, xyz())
	broken, _ := NewDescriptor("broken", "#nope", 3, 0, 3, xyz())
	reg := NewRegistry(store, map[string]*Descriptor{"positions": d, "broken": broken})

	first, err := reg.Resolve("mesh", "#positions")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := reg.Resolve("mesh", "positions")
	if first != second {
		t.Errorf("Resolve is not memoised")
	}

	_, err1 := reg.Resolve("mesh", "broken")
	_, err2 := reg.Resolve("mesh", "broken")
	if err1 == nil || err1 != err2 {
		t.Errorf("Resolve(broken) errors %v / %v; expected same cached error", err1, err2)
	}

	_, err = reg.Resolve("mesh", "#absent")
	var undefined *dae.UndefinedSourceError
	if !errors.As(err, &undefined) || undefined.Element != "mesh" || undefined.Source != "absent" {
		t.Errorf("Resolve(absent) error=%v; expected UndefinedSourceError", err)
	}

	if ids := reg.IDs(); !reflect.DeepEqual(ids, []string{"broken", "positions"}) {
		t.Errorf("IDs()=%v", ids)
	}
}
