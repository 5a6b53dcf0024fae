package store

import (
	"context"
	"fmt"

	"github.com/on-the-ground/effect_ive_store/shared/helper"
)

func (s *Store) lookup(ctx context.Context, namespace string) (unit, error) {
	if _, ok := s.models[namespace]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNamespace, namespace)
	}
	u, ok := ctx.Value(namespaceKey{s, namespace}).(unit)
	if !ok || u.isClosed() {
		return nil, fmt.Errorf("%w: %q", ErrNoProvider, namespace)
	}
	return u, nil
}

// UseModelState returns the current snapshot of namespace.
func (s *Store) UseModelState(ctx context.Context, namespace string) (Snapshot[any], error) {
	u, err := s.lookup(ctx, namespace)
	if err != nil {
		return Snapshot[any]{}, err
	}
	return u.snapshot(), nil
}

// UseModelAction returns the action map of namespace. It is the same pointer
// for the whole provider mount.
func (s *Store) UseModelAction(ctx context.Context, namespace string) (*Actions, error) {
	u, err := s.lookup(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return u.actions(), nil
}

// UseModel returns both the snapshot and the action map of namespace.
func (s *Store) UseModel(ctx context.Context, namespace string) (Snapshot[any], *Actions, error) {
	u, err := s.lookup(ctx, namespace)
	if err != nil {
		return Snapshot[any]{}, nil, err
	}
	return u.snapshot(), u.actions(), nil
}

func (s *Store) MustUseModelState(ctx context.Context, namespace string) Snapshot[any] {
	return helper.MustGetTypedValue[Snapshot[any]](func() (any, error) {
		return s.UseModelState(ctx, namespace)
	})
}

func (s *Store) MustUseModelAction(ctx context.Context, namespace string) *Actions {
	return helper.MustGetTypedValue[*Actions](func() (any, error) {
		return s.UseModelAction(ctx, namespace)
	})
}

func (s *Store) MustUseModel(ctx context.Context, namespace string) (Snapshot[any], *Actions) {
	snap, acts, err := s.UseModel(ctx, namespace)
	if err != nil {
		panic(err)
	}
	return snap, acts
}

// StateOf returns the typed snapshot of namespace. It fails with ErrStateType
// when S is not the state type of the namespace's model.
func StateOf[S any](ctx context.Context, s *Store, namespace string) (Snapshot[S], error) {
	u, err := s.lookup(ctx, namespace)
	if err != nil {
		return Snapshot[S]{}, err
	}
	c, ok := u.(*container[S])
	if !ok {
		return Snapshot[S]{}, fmt.Errorf("%w: %s is not %T", ErrStateType, namespace, *new(S))
	}
	return c.typedSnapshot(), nil
}
