package accessor

import (
	"sort"
	"strings"
	"sync"

	"github.com/mogaika/dae_browser/dae"
	"github.com/mogaika/dae_browser/dae/flat"
)

type resolution struct {
	res *Resolved
	err error
}

// Registry resolves <source> accessors by source id. Each source is resolved
// at most once, later calls return the cached result or error.
// The store must be fully built before the registry is used.
type Registry struct {
	store   *flat.Store
	sources map[string]*Descriptor

	mu       sync.Mutex
	resolved map[string]resolution
}

func NewRegistry(store *flat.Store, sources map[string]*Descriptor) *Registry {
	if sources == nil {
		sources = make(map[string]*Descriptor)
	}
	return &Registry{
		store:    store,
		sources:  sources,
		resolved: make(map[string]resolution),
	}
}

func (r *Registry) Store() *flat.Store { return r.store }

func (r *Registry) Descriptor(id string) (*Descriptor, bool) {
	d, ok := r.sources[strings.TrimPrefix(id, "#")]
	return d, ok
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve returns the resolved accessor of source id. referrer names the
// element asking for it and ends up in the error when the source is missing.
func (r *Registry) Resolve(referrer, id string) (*Resolved, error) {
	id = strings.TrimPrefix(id, "#")
	d, ok := r.sources[id]
	if !ok {
		return nil, &dae.UndefinedSourceError{Element: referrer, Source: id}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.resolved[id]; ok {
		return cached.res, cached.err
	}
	res, err := d.Resolve(r.store)
	r.resolved[id] = resolution{res: res, err: err}
	return res, err
}
