// Package accessor interprets flat arrays as sequences of fixed-size records
// with named fields, the way a <technique_common><accessor> element describes.
//
// A Descriptor is what the parser produces; it does not know about any store.
// Resolve binds it to a flat.Store and returns an immutable Resolved value
// that extracts packed per-record data.
package accessor

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Param is one <param> child as written in the document.
type Param struct {
	Name string
	Type string
}

// Field is a param with its position inside a record.
// Fields with an empty Name take space in the record but cannot be requested.
type Field struct {
	Name   string
	Type   string
	Offset int
	Size   int
}

var typeSizes = map[string]int{
	"int":      1,
	"float":    1,
	"double":   1,
	"bool":     1,
	"Name":     1,
	"name":     1,
	"IDREF":    1,
	"SIDREF":   1,
	"float2":   2,
	"float3":   3,
	"float4":   4,
	"float2x2": 4,
	"float3x3": 9,
	"float4x4": 16,
}

// TypeSize returns the number of array elements a param type occupies.
// Unknown types report size 1 and ok=false.
func TypeSize(typ string) (size int, ok bool) {
	if size, ok = typeSizes[typ]; ok {
		return size, true
	}
	return 1, false
}

type Descriptor struct {
	// Owner is the id of the element carrying the accessor, usually the <source>.
	Owner  string
	Source string
	Count  int
	Offset int
	Stride int
	Fields []Field
}

// NewDescriptor lays params out one after another inside the record.
// A zero stride means the attribute was omitted and becomes 1.
func NewDescriptor(owner, source string, count, offset, stride int, params []Param) (*Descriptor, error) {
	if count < 0 {
		return nil, errors.Errorf("accessor %q: negative count %d", owner, count)
	}
	if offset < 0 {
		return nil, errors.Errorf("accessor %q: negative offset %d", owner, offset)
	}
	if stride == 0 {
		stride = 1
	}
	if stride < 0 {
		return nil, errors.Errorf("accessor %q: invalid stride %d", owner, stride)
	}

	d := &Descriptor{
		Owner:  owner,
		Source: strings.TrimPrefix(source, "#"),
		Count:  count,
		Offset: offset,
		Stride: stride,
		Fields: make([]Field, len(params)),
	}
	pos := 0
	for i, p := range params {
		size, _ := TypeSize(p.Type)
		d.Fields[i] = Field{Name: p.Name, Type: p.Type, Offset: pos, Size: size}
		pos += size
	}
	return d, nil
}

// RecordSize is the extent of all fields, named or not.
func (d *Descriptor) RecordSize() int {
	end := 0
	for _, f := range d.Fields {
		if e := f.Offset + f.Size; e > end {
			end = e
		}
	}
	return end
}

// need is the minimal array length the layout reads from.
// It saturates at math.MaxInt when the layout does not fit in an int.
func (d *Descriptor) need() int {
	end := d.RecordSize()
	if d.Count == 0 || end == 0 {
		return 0
	}
	if d.Count-1 > (math.MaxInt-d.Offset-end)/d.Stride {
		return math.MaxInt
	}
	return d.Offset + (d.Count-1)*d.Stride + end
}
