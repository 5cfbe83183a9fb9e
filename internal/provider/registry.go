package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps provider names to initialized providers and remembers which
// provider serves each model type first.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	defaults  map[ModelType]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		defaults:  make(map[ModelType]string),
	}
}

// Register adds p. The first provider registered for a model becomes its
// default. Registering the same name again replaces the entry.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[info.Name] = p
	for _, m := range p.SupportedModels() {
		if _, ok := r.defaults[m]; !ok {
			r.defaults[m] = info.Name
		}
	}
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Fetcher returns the default provider's fetcher for model.
func (r *Registry) Fetcher(model ModelType) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.defaults[model]
	if !ok {
		return nil, &ErrModelNotSupported{Model: model}
	}
	f := r.providers[name].Fetcher(model)
	if f == nil {
		return nil, &ErrModelNotSupported{Provider: name, Model: model}
	}
	return f, nil
}
