package store

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps every namespace of a provider mount to its action map.
//
// It is filled in two passes: slots are allocated for all namespaces first,
// then action maps are published once every container exists. Effects get the
// registry so they can drive any namespace of the same mount.
type Registry struct {
	mu    sync.RWMutex
	slots map[string]*Actions
}

func newRegistry() *Registry {
	return &Registry{slots: make(map[string]*Actions)}
}

func (r *Registry) allocate(namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[namespace] = nil
}

func (r *Registry) publish(namespace string, acts *Actions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[namespace]; !ok {
		panic(fmt.Errorf("%w: publish to unallocated slot %q", ErrUnknownNamespace, namespace))
	}
	r.slots[namespace] = acts
}

// Actions returns the action map of namespace.
func (r *Registry) Actions(namespace string) (*Actions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acts, ok := r.slots[namespace]
	if !ok || acts == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNamespace, namespace)
	}
	return acts, nil
}

// MustActions is the panic-on-failure variant of Actions.
func (r *Registry) MustActions(namespace string) *Actions {
	acts, err := r.Actions(namespace)
	if err != nil {
		panic(err)
	}
	return acts
}

// Dispatch calls action of namespace with args.
func (r *Registry) Dispatch(namespace, action string, args ...any) error {
	acts, err := r.Actions(namespace)
	if err != nil {
		return err
	}
	return acts.Call(action, args...)
}

// Namespaces lists the registered namespaces in sorted order.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.slots))
	for ns := range r.slots {
		names = append(names, ns)
	}
	slices.Sort(names)
	return names
}
