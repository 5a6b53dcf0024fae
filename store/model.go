package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/on-the-ground/effect_ive_store/shared/helper"
)

// Reducer is a pure, synchronous state transition.
// It must not mutate prev; return a new value instead.
type Reducer[S any] func(prev S, args ...any) S

// Effect is an asynchronous side effect. It receives the state current when
// the run started and the registry of every namespace's actions of the mount.
// A returned error (or a panic) is recorded in the effect's status and never
// reaches the caller of the action.
type Effect[S any] func(ctx context.Context, state S, actions *Registry, args ...any) error

// Model bundles the initial state, reducers and effects of one namespace.
// A model is never mutated by the store.
type Model[S any] struct {
	State    S
	Reducers map[string]Reducer[S]
	Effects  map[string]Effect[S]
}

// Definition is implemented by Model[S] for any S. It lets models with
// different state types share one CreateStore call.
type Definition interface {
	validate(namespace string) error
	mount(namespace string, initial any, sc *scope) (unit, error)
}

var _ Definition = Model[struct{}]{}

func (m Model[S]) validate(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidModel)
	}
	for name, fn := range m.Reducers {
		if fn == nil {
			return fmt.Errorf("%w: %s: reducer %q is nil", ErrInvalidModel, namespace, name)
		}
		if _, ok := m.Effects[name]; ok {
			return fmt.Errorf("%w: %s: %q is both a reducer and an effect", ErrInvalidModel, namespace, name)
		}
	}
	for name, fn := range m.Effects {
		if fn == nil {
			return fmt.Errorf("%w: %s: effect %q is nil", ErrInvalidModel, namespace, name)
		}
	}
	return nil
}

func (m Model[S]) mount(namespace string, initial any, sc *scope) (unit, error) {
	state := m.State
	if initial != nil {
		override, err := helper.GetTypedValueOf[S](func() (any, error) {
			return initial, nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInitialStateType, namespace, err)
		}
		state = override
	}
	return newContainer(namespace, m, state, sc), nil
}

func (m Model[S]) reducerNames() []string {
	return sortedKeys(m.Reducers)
}

func (m Model[S]) effectNames() []string {
	return sortedKeys(m.Effects)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
