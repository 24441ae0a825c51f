package platform

import (
	"fmt"
	"sort"
)

// Registry maps platform identifiers to adapters. Adapters are registered
// explicitly at construction time so tests can substitute fakes.
type Registry struct {
	adapters map[Platform]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Platform]Adapter)}
}

func (r *Registry) Register(p Platform, a Adapter) {
	r.adapters[p] = a
}

func (r *Registry) IsSupported(platform string) bool {
	_, ok := r.adapters[Platform(platform)]
	return ok
}

// Get resolves the adapter for a platform string, wrapping
// ErrUnsupportedPlatform when nothing is registered for it.
func (r *Registry) Get(platform string) (Adapter, error) {
	a, ok := r.adapters[Platform(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
	return a, nil
}

// Supported lists registered platforms in stable order.
func (r *Registry) Supported() []string {
	platforms := make([]string, 0, len(r.adapters))
	for p := range r.adapters {
		platforms = append(platforms, string(p))
	}
	sort.Strings(platforms)
	return platforms
}
