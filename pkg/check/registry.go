package check

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/newtron-network/newtcheck/pkg/util"
)

// Registry maps check names to definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// DefaultRegistry holds the built-in checks.
var DefaultRegistry = NewRegistry()

// Register adds a definition. Invalid definitions and duplicate names are
// rejected.
func (r *Registry) Register(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("registering %s: %w", def.Name, util.ErrAlreadyExists)
	}
	r.defs[def.Name] = def
	return nil
}

// MustRegister is Register for package initialization.
func (r *Registry) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByCategory returns the definitions tagged with category, sorted by name.
func (r *Registry) ByCategory(category string) []*Definition {
	var out []*Definition
	for _, n := range r.Names() {
		def, _ := r.Lookup(n)
		if slices.Contains(def.Categories, category) {
			out = append(out, def)
		}
	}
	return out
}

// Categories returns every category in use, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range r.Names() {
		def, _ := r.Lookup(n)
		for _, c := range def.Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}
