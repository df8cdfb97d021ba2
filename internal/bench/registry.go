package bench

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is a read-only set of parsers indexed by name.
type Registry struct {
	byName map[string]Parser
}

// NewRegistry indexes parsers by their lower-cased names. Names must be
// non-empty and unique.
func NewRegistry(parsers ...Parser) (Registry, error) {
	byName := make(map[string]Parser, len(parsers))
	for _, p := range parsers {
		if p == nil {
			return Registry{}, fmt.Errorf("parser cannot be nil")
		}
		name := strings.ToLower(strings.TrimSpace(p.Name()))
		if name == "" {
			return Registry{}, fmt.Errorf("parser name cannot be empty")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("duplicate parser %q", name)
		}
		byName[name] = p
	}
	return Registry{byName: byName}, nil
}

// Get returns the parser with the given name, ignoring case.
func (r Registry) Get(name string) (Parser, bool) {
	if r.byName == nil {
		return nil, false
	}
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Lookup is like Get but reports unknown names as an error that lists the
// known ones.
func (r Registry) Lookup(name string) (Parser, error) {
	if p, ok := r.Get(name); ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown parser %q (known parsers: %s)",
		name, strings.Join(r.Names(), ", "))
}

// LookupAll resolves every name, in order.
func (r Registry) LookupAll(names []string) ([]Parser, error) {
	parsers := make([]Parser, len(names))
	for i, name := range names {
		p, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		parsers[i] = p
	}
	return parsers, nil
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var builtin = mustRegistry(NexusParser{}, GotreeParser{})

func mustRegistry(parsers ...Parser) Registry {
	r, err := NewRegistry(parsers...)
	if err != nil {
		panic(err)
	}
	return r
}

// Builtin returns the registry of the parsers that ship with nexbench.
func Builtin() Registry {
	return builtin
}

// Names lists the built-in parsers.
func Names() []string {
	return builtin.Names()
}
