// Package flat keeps the decoded <*_array> elements of a document, keyed by id.
//
// A Store is filled through a Builder exactly once. After Build the store is
// read-only and may be shared between any number of goroutines.
package flat

import (
	"sort"

	"github.com/pkg/errors"
)

type Kind int

const (
	Float Kind = iota
	Int
	Bool
	Name
	IDRef
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Name:
		return "Name"
	case IDRef:
		return "IDREF"
	default:
		return "unknown"
	}
}

// Array is one flat typed array. Only the slice matching Kind is set,
// Name and IDRef arrays share Strings.
type Array struct {
	ID      string
	Kind    Kind
	Floats  []float32
	Ints    []int
	Bools   []bool
	Strings []string
}

func (a *Array) Len() int {
	switch a.Kind {
	case Float:
		return len(a.Floats)
	case Int:
		return len(a.Ints)
	case Bool:
		return len(a.Bools)
	default:
		return len(a.Strings)
	}
}

type Store struct {
	arrays map[string]*Array
}

func (s *Store) Lookup(id string) (*Array, bool) {
	if s == nil {
		return nil, false
	}
	a, ok := s.arrays[id]
	return a, ok
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.arrays)
}

// IDs returns the ids of every array in lexical order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.arrays))
	for id := range s.arrays {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type Builder struct {
	arrays map[string]*Array
}

func NewBuilder() *Builder {
	return &Builder{arrays: make(map[string]*Array)}
}

func (b *Builder) add(a *Array) error {
	if b.arrays == nil {
		return errors.Errorf("Array %q added after Build", a.ID)
	}
	if a.ID == "" {
		return errors.Errorf("Array of kind %v has no id", a.Kind)
	}
	if _, exists := b.arrays[a.ID]; exists {
		return errors.Errorf("Array %q defined twice", a.ID)
	}
	b.arrays[a.ID] = a
	return nil
}

func (b *Builder) AddFloats(id string, values []float32) error {
	return b.add(&Array{ID: id, Kind: Float, Floats: values})
}

func (b *Builder) AddInts(id string, values []int) error {
	return b.add(&Array{ID: id, Kind: Int, Ints: values})
}

func (b *Builder) AddBools(id string, values []bool) error {
	return b.add(&Array{ID: id, Kind: Bool, Bools: values})
}

func (b *Builder) AddNames(id string, values []string) error {
	return b.add(&Array{ID: id, Kind: Name, Strings: values})
}

func (b *Builder) AddIDRefs(id string, values []string) error {
	return b.add(&Array{ID: id, Kind: IDRef, Strings: values})
}

// Build freezes the collected arrays. Adding to the builder afterwards fails.
func (b *Builder) Build() *Store {
	s := &Store{arrays: b.arrays}
	if s.arrays == nil {
		s.arrays = make(map[string]*Array)
	}
	b.arrays = nil
	return s
}
