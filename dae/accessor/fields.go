package accessor

import (
	"sort"
	"strings"

	"github.com/mogaika/dae_browser/dae"
)

type span struct {
	offset int
	size   int
}

type fieldEntry struct {
	key string
	span
}

// FieldTable maps field names to their place in a record. Entries are kept
// sorted by key; accessors rarely have more than a handful of params.
type FieldTable struct {
	entries []fieldEntry
	// declaration order of named fields
	named []span
}

// fieldKey folds the single-letter component names (x,y,z,w,s,t,p,q,r,g,b,a)
// so they match in any case. Longer names match exactly.
func fieldKey(name string) string {
	if len(name) == 1 && strings.ContainsAny(name, "xyzwstpqrgbaXYZWSTPQRGBA") {
		return strings.ToLower(name)
	}
	return name
}

func newFieldTable(owner string, fields []Field) (FieldTable, error) {
	var t FieldTable
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		t.entries = append(t.entries, fieldEntry{key: fieldKey(f.Name), span: span{f.Offset, f.Size}})
		t.named = append(t.named, span{f.Offset, f.Size})
	}
	sort.SliceStable(t.entries, func(i, j int) bool { return t.entries[i].key < t.entries[j].key })
	for i := 1; i < len(t.entries); i++ {
		if t.entries[i].key == t.entries[i-1].key {
			return FieldTable{}, &dae.DuplicateFieldError{Accessor: owner, Field: t.entries[i].key}
		}
	}
	return t, nil
}

func (t *FieldTable) lookup(name string) (span, bool) {
	key := fieldKey(name)
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].key >= key })
	if i < len(t.entries) && t.entries[i].key == key {
		return t.entries[i].span, true
	}
	return span{}, false
}

func (t *FieldTable) Has(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

func (t *FieldTable) Len() int {
	return len(t.entries)
}
