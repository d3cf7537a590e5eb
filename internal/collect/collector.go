// Package collect resolves raw submitted file paths to canonical
// (student, timestamp, file id) identities. The Collector interface is the
// substitution point: any implementation registered here can replace the
// default filename matcher without the extraction engine changing.
package collect

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"chalk/internal/config"
)

// Identity is the resolved identity of one submitted file.
type Identity struct {
	RawPath   string
	StudentID string
	FileID    string
	// Timestamp is zero when the collector could not recover one; such
	// attempts lose ties against any attempt with a parseable timestamp.
	Timestamp time.Time
}

// Collector extracts an identity from a raw file path. A nil Identity with a
// nil error means the file is not recognized and should be skipped (or
// escalated under strict mode by the caller).
type Collector interface {
	Name() string
	Collect(path string) (*Identity, error)
}

// Factory builds a collector from configuration.
type Factory func(cfg *config.Config) (Collector, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register installs a named collector factory. Intended to be called from
// package init functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New resolves a registered collector by name.
func New(name string, cfg *config.Config) (Collector, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown collector %q (registered: %v)", name, Names())
	}
	return factory(cfg)
}

// Names returns the registered collector names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
