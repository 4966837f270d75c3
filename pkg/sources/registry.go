package sources

import (
	"sync"
)

// Factory is a function that creates a new Source instance
type Factory func(cfg Config) (Source, error)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds a source factory to the registry
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// New creates a new source instance by name
func New(name string, cfg Config) (Source, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, ErrUnknownSource
	}

	return factory(cfg)
}

// List returns all registered source names
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
