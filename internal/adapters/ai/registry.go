package ai

import (
	"sync"

	"morpheus/pkg/errors"
)

// ProviderRegistry stores chat providers by name.
type ProviderRegistry struct {
	providers map[ProviderName]RegisteredProvider
	mu        sync.RWMutex
}

// NewProviderRegistry constructs an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{providers: make(map[ProviderName]RegisteredProvider)}
}

// Register adds a provider. Duplicate names are rejected.
func (r *ProviderRegistry) Register(p RegisteredProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Name()]; exists {
		return errors.Wrapf(errors.ErrInvalidInput, "provider %s already registered", p.Name())
	}
	r.providers[p.Name()] = p
	return nil
}

// Get retrieves a provider by name.
func (r *ProviderRegistry) Get(name ProviderName) (RegisteredProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "provider %s not registered", name)
	}
	return p, nil
}

// List returns registered provider names.
func (r *ProviderRegistry) List() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]ProviderName, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
