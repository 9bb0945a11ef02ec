package accessor

import (
	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/flat"
)

// Resolved is a descriptor bound to its array. It never changes after Resolve.
type Resolved struct {
	desc  *Descriptor
	array *flat.Array
	table FieldTable
}

// Resolve binds d to the array it references and validates the layout.
func (d *Descriptor) Resolve(store *flat.Store) (*Resolved, error) {
	array, ok := store.Lookup(d.Source)
	if !ok {
		return nil, &dae.UndefinedArrayError{Accessor: d.Owner, Array: d.Source}
	}
	table, err := newFieldTable(d.Owner, d.Fields)
	if err != nil {
		return nil, err
	}
	if need := d.need(); need > array.Len() {
		return nil, &dae.OutOfBoundsError{Accessor: d.Owner, Need: need, Len: array.Len()}
	}
	return &Resolved{desc: d, array: array, table: table}, nil
}

func (r *Resolved) Descriptor() *Descriptor { return r.desc }
func (r *Resolved) Array() *flat.Array      { return r.array }
func (r *Resolved) Count() int              { return r.desc.Count }
func (r *Resolved) Stride() int             { return r.desc.Stride }
func (r *Resolved) Has(name string) bool    { return r.table.Has(name) }

// BlockSize is the number of values one record yields for the requested fields.
func (r *Resolved) BlockSize(fields ...string) (int, error) {
	_, size, err := r.spans(fields)
	return size, err
}

// spans picks the requested fields, or every named field in declaration order.
func (r *Resolved) spans(fields []string) ([]span, int, error) {
	if len(fields) == 0 {
		size := 0
		for _, s := range r.table.named {
			size += s.size
		}
		return r.table.named, size, nil
	}
	spans := make([]span, len(fields))
	size := 0
	for i, name := range fields {
		s, ok := r.table.lookup(name)
		if !ok {
			return nil, 0, &dae.UnknownFieldError{Accessor: r.desc.Owner, Field: name}
		}
		spans[i] = s
		size += s.size
	}
	return spans, size, nil
}

// packed reports whether the requested fields cover the record front to back
// in storage order, so a whole-array copy yields the same result as gathering.
func packed(spans []span) bool {
	pos := 0
	for _, s := range spans {
		if s.offset != pos {
			return false
		}
		pos += s.size
	}
	return true
}

func gather[T any](r *Resolved, src []T, fields []string) ([]T, error) {
	spans, blockSize, err := r.spans(fields)
	if err != nil {
		return nil, err
	}
	d := r.desc

	if d.Offset == 0 && d.Stride == blockSize && d.Count*blockSize == len(src) && packed(spans) {
		out := make([]T, len(src))
		copy(out, src)
		return out, nil
	}

	out := make([]T, d.Count*blockSize)
	pos := 0
	for i := 0; i < d.Count; i++ {
		base := d.Offset + i*d.Stride
		for _, s := range spans {
			pos += copy(out[pos:pos+s.size], src[base+s.offset:base+s.offset+s.size])
		}
	}
	return out, nil
}

func (r *Resolved) mismatch(want string) error {
	return &dae.KindMismatchError{Accessor: r.desc.Owner, Want: want, Got: r.array.Kind.String()}
}

// Floats extracts packed float data for the named fields, or all named fields.
func (r *Resolved) Floats(fields ...string) ([]float32, error) {
	if r.array.Kind != flat.Float {
		return nil, r.mismatch("float")
	}
	return gather(r, r.array.Floats, fields)
}

func (r *Resolved) Ints(fields ...string) ([]int, error) {
	if r.array.Kind != flat.Int {
		return nil, r.mismatch("int")
	}
	return gather(r, r.array.Ints, fields)
}

func (r *Resolved) Bools(fields ...string) ([]bool, error) {
	if r.array.Kind != flat.Bool {
		return nil, r.mismatch("bool")
	}
	return gather(r, r.array.Bools, fields)
}

// Strings extracts Name or IDREF data.
func (r *Resolved) Strings(fields ...string) ([]string, error) {
	if r.array.Kind != flat.Name && r.array.Kind != flat.IDRef {
		return nil, r.mismatch("Name")
	}
	return gather(r, r.array.Strings, fields)
}
