// Package catalog loads the list of checks a run evaluates, with their inputs.
//
//	- name: VerifyBGPIPv4UnicastCount
//	  inputs:
//	    number: 2
//	    vrf: default
//	- name: VerifyDropCounters
//	  categories: [smoke]
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtcheck/pkg/check"
	"github.com/newtron-network/newtcheck/pkg/util"
)

// Entry selects one check and supplies its inputs.
type Entry struct {
	Name       string       `yaml:"name"`
	Inputs     check.Inputs `yaml:"inputs,omitempty"`
	Categories []string     `yaml:"categories,omitempty"`

	// Definition is set by Resolve.
	Definition *check.Definition `yaml:"-"`
}

// AllCategories returns the definition's categories followed by the entry's own.
func (e *Entry) AllCategories() []string {
	var defCats []string
	if e.Definition != nil {
		defCats = e.Definition.Categories
	}
	return util.MergeStringSlices(defCats, e.Categories)
}

// Catalog is an ordered list of entries. The same check may appear more than
// once with different inputs.
type Catalog struct {
	Entries []*Entry
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var entries []*Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	v := &util.ValidationBuilder{}
	for i, e := range entries {
		if e == nil || e.Name == "" {
			v.AddErrorf("entry %d has no name", i)
		}
	}
	if err := v.Build(); err != nil {
		return nil, err
	}
	return &Catalog{Entries: entries}, nil
}

// FromRegistry builds a catalog running every registered check without inputs.
func FromRegistry(reg *check.Registry) *Catalog {
	c := &Catalog{}
	for _, name := range reg.Names() {
		def, _ := reg.Lookup(name)
		c.Entries = append(c.Entries, &Entry{Name: name, Definition: def})
	}
	return c
}

// Resolve binds every entry to its definition in reg and validates the
// inputs it supplies. All problems are reported together.
func (c *Catalog) Resolve(reg *check.Registry) error {
	v := &util.ValidationBuilder{}
	for i, e := range c.Entries {
		def, ok := reg.Lookup(e.Name)
		if !ok {
			v.AddErrorf("entry %d: unknown check '%s'", i, e.Name)
			continue
		}
		e.Definition = def
		if def.ValidateInputs == nil {
			continue
		}
		if err := def.ValidateInputs(e.Inputs); err != nil {
			v.AddErrorf("entry %d: %v", i, err)
		}
	}
	return v.Build()
}

// Filter returns the entries whose categories intersect categories. No
// categories keeps every entry.
func (c *Catalog) Filter(categories []string) []*Entry {
	if len(categories) == 0 {
		return c.Entries
	}
	var out []*Entry
	for _, e := range c.Entries {
		if util.Intersects(e.AllCategories(), categories) {
			out = append(out, e)
		}
	}
	return out
}
