// Package source resolves configured source types to event.Source
// implementations.
//
// Adapters live in subpackages and register themselves from init, so the
// set of available types is decided by which adapter packages the binary
// imports.
package source

import (
	"fmt"
	"sort"
	"strings"

	"picket/internal/config"
	"picket/internal/event"
)

// Constructor builds a Source from resolved configuration.
type Constructor func(cfg config.SourceConfig) (event.Source, error)

var registry = map[string]Constructor{}

// Register adds a source constructor under the given type name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// New builds the source named by cfg.Type.
func New(cfg config.SourceConfig) (event.Source, error) {
	ctor, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q (available: %s)", cfg.Type, strings.Join(Types(), ", "))
	}
	return ctor(cfg)
}

// Types returns the registered source type names, sorted.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
