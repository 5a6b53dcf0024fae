package store

import (
	"fmt"
	"slices"
)

// Action invokes a reducer or requests an effect run.
type Action func(args ...any)

// Actions is the action map of one namespace. It is built once per provider
// mount, so the pointer is stable for the mount's lifetime and can be compared
// to detect a remount.
type Actions struct {
	namespace string
	byName    map[string]Action
	reducers  []string
	effects   []string
}

func (a *Actions) Namespace() string { return a.namespace }

// Get returns the named action.
func (a *Actions) Get(name string) (Action, bool) {
	act, ok := a.byName[name]
	return act, ok
}

// Must returns the named action or panics with ErrUnknownAction.
func (a *Actions) Must(name string) Action {
	act, ok := a.byName[name]
	if !ok {
		panic(fmt.Errorf("%w: %s.%s", ErrUnknownAction, a.namespace, name))
	}
	return act
}

// Call invokes the named action with args.
func (a *Actions) Call(name string, args ...any) error {
	act, ok := a.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownAction, a.namespace, name)
	}
	act(args...)
	return nil
}

// Reducers lists the reducer action names in sorted order.
func (a *Actions) Reducers() []string { return slices.Clone(a.reducers) }

// Effects lists the effect action names in sorted order.
func (a *Actions) Effects() []string { return slices.Clone(a.effects) }

// Names lists every action name in sorted order.
func (a *Actions) Names() []string {
	names := append(slices.Clone(a.reducers), a.effects...)
	slices.Sort(names)
	return names
}
