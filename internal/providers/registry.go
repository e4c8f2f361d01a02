package providers

import (
	"fmt"
	"sync"
)

// Factory builds a Provider from a free-form config map, mirroring
// Toolkit's `func(config map[string]interface{}) (toolkit.Provider, error)`
// provider-factory shape.
type Factory func(config map[string]any) (Provider, error)

// Registry is a string-addressable map of provider factories and built
// instances. Each NewRegistry call returns an independent registry; there
// is no package-level instance. Providers are addressable by name; custom
// providers register a factory closure at runtime, and duplicate factory
// names fail registration.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]Provider),
	}
}

// RegisterFactory adds a named factory. Returns an error if the name is
// already taken.
func (r *Registry) RegisterFactory(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("providers: factory %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Build instantiates (and caches) the provider for name using its
// registered factory and the supplied config.
func (r *Registry) Build(name string, config map[string]any) (Provider, error) {
	r.mu.RLock()
	if inst, ok := r.instances[name]; ok {
		r.mu.RUnlock()
		return inst, nil
	}
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("providers: no factory registered for %q", name)
	}

	inst, err := factory(config)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.instances[name] = inst
	r.mu.Unlock()
	return inst, nil
}

// Get returns an already-built provider instance by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.instances[name]
	return p, ok
}

// RegisterInstance registers an already-constructed provider directly,
// bypassing the factory indirection — used for tests and for providers
// built outside the registry (e.g. with pre-loaded credentials).
func (r *Registry) RegisterInstance(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = p
}

// Names lists every registered name, whether registered as a factory or
// as an instance, each once.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories)+len(r.instances))
	for n := range r.factories {
		names = append(names, n)
	}
	for n := range r.instances {
		if _, ok := r.factories[n]; !ok {
			names = append(names, n)
		}
	}
	return names
}
