// Package registry maps implementation keys to canonical array implementations.
package registry

import (
	"errors"
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// ErrDuplicateKey is returned when a key is registered twice.
	ErrDuplicateKey = errors.New("ndarray: implementation key already registered")

	// ErrUnknownKey is returned when no implementation is registered under a key.
	ErrUnknownKey = errors.New("ndarray: unknown implementation key")
)

// Entry is a canonical implementation instance.
type Entry interface {
	ImplementationKey() string
}

// Registry maps implementation keys to canonical instances.
//
// Keys are written once, normally during package initialisation, and read
// many times afterwards. The lock only provides safe publication.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Default is the process-wide registry implementations register into.
var Default = New()

// Register adds impl under its own key.
func (r *Registry) Register(impl Entry) error {
	key := impl.ImplementationKey()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; ok {
		return pkgerrors.Wrapf(ErrDuplicateKey, "key %q", key)
	}
	r.entries[key] = impl
	klog.V(2).Infof("ndarray: registered implementation %q (%T)", key, impl)
	return nil
}

// Canonical returns the instance registered under key.
func (r *Registry) Canonical(key string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	impl, ok := r.entries[key]
	if !ok {
		return nil, pkgerrors.Wrapf(ErrUnknownKey, "key %q", key)
	}
	return impl, nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register adds impl to the Default registry.
func Register(impl Entry) error {
	return Default.Register(impl)
}

// Canonical looks key up in the Default registry.
func Canonical(key string) (Entry, error) {
	return Default.Canonical(key)
}
