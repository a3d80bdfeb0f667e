package nft

import (
	"fmt"
	"sync"
)

// Registry maps version strings to logic implementations. The most
// recently registered version is the latest.
type Registry struct {
	mu      sync.RWMutex
	logics  map[string]Logic
	ordered []string
}

// NewRegistry registers logics in order.
func NewRegistry(logics ...Logic) (*Registry, error) {
	r := &Registry{logics: make(map[string]Logic)}
	for _, l := range logics {
		if err := r.Register(l); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry holds every shipped version.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(V1{})
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds l. Versions are unique.
func (r *Registry) Register(l Logic) error {
	if l == nil || l.Version() == "" {
		return fmt.Errorf("register logic: %w", ErrUnknownLogic)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.logics[l.Version()]; exists {
		return fmt.Errorf("register logic: version %s already registered", l.Version())
	}
	r.logics[l.Version()] = l
	r.ordered = append(r.ordered, l.Version())
	return nil
}

// Resolve returns the logic for version, or the latest for "".
func (r *Registry) Resolve(version string) (Logic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if version == "" {
		if len(r.ordered) == 0 {
			return nil, ErrUnknownLogic
		}
		version = r.ordered[len(r.ordered)-1]
	}
	l, ok := r.logics[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLogic, version)
	}
	return l, nil
}

// Versions lists registered versions in registration order.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.ordered...)
}
