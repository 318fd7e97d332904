// Package catalog names the known ontologies and binds each descriptor to
// its behaviour overrides.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// Entry is one catalogued ontology.
type Entry struct {
	Descriptor ontology.Descriptor
	Hooks      ontology.Hooks
}

// Registry maps lowercase ontology ids to entries. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces an entry.
func (r *Registry) Register(e Entry) error {
	if strings.TrimSpace(e.Descriptor.ID) == "" {
		return fmt.Errorf("%w: descriptor has no ontology id", ontology.ErrInvalidEntity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Descriptor.Key()] = e
	return nil
}

// Get looks an ontology up by id, ignoring case.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[strings.ToLower(strings.TrimSpace(id))]
	return e, ok
}

// List returns every entry sorted by id.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Descriptor.Key() < out[j].Descriptor.Key() })
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry preloaded with the builtin ontologies.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, e := range Builtins() {
			if err := defaultRegistry.Register(e); err != nil {
				panic(fmt.Sprintf("catalog: builtin %q: %v", e.Descriptor.ID, err))
			}
		}
	})
	return defaultRegistry
}
