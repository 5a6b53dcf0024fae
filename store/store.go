package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/effects/concurrency"
	"github.com/on-the-ground/effect_ive_store/effects/log"
	"github.com/on-the-ground/effect_ive_store/store/inspect"
)

// Store holds validated model definitions. It has no runtime state of its own:
// each WithProvider call mounts an independent set of containers.
type Store struct {
	models map[string]Definition
	order  []string
	config Config

	connects atomic.Uint64
}

// CreateStore validates models and returns a Store serving their namespaces.
func CreateStore(models map[string]Definition, opts ...Option) (*Store, error) {
	s := &Store{
		models: make(map[string]Definition, len(models)),
		config: DefaultConfig,
	}
	for _, opt := range opts {
		opt(s)
	}
	for ns, def := range models {
		if def == nil {
			return nil, fmt.Errorf("%w: %s: nil model", ErrInvalidModel, ns)
		}
		if err := def.validate(ns); err != nil {
			return nil, err
		}
		s.models[ns] = def
	}
	s.order = slices.Sorted(maps.Keys(s.models))
	return s, nil
}

// MustCreateStore is like CreateStore but panics on invalid models.
func MustCreateStore(models map[string]Definition, opts ...Option) *Store {
	s, err := CreateStore(models, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Namespaces lists the namespaces of the store in sorted order.
func (s *Store) Namespaces() []string {
	return slices.Clone(s.order)
}

type scopeKey struct{ store *Store }

type namespaceKey struct {
	store     *Store
	namespace string
}

// WithProvider mounts every namespace of the store and returns a context
// carrying them. initialStates overrides Model.State per namespace for this
// mount only; an override of the wrong type panics with ErrInitialStateType.
//
// The teardown turns further writes into no-ops, cancels running effects,
// waits for them and returns the parent context.
//
// Usage:
//
//	ctx, unmount := s.WithProvider(ctx, nil)
//	defer unmount()
func (s *Store) WithProvider(
	ctx context.Context,
	initialStates map[string]any,
) (context.Context, func() context.Context) {
	parent := ctx
	index, err := inspect.New()
	if err != nil {
		panic(err)
	}
	sc := &scope{
		id:       uuid.NewString(),
		registry: newRegistry(),
		index:    index,
		units:    make(map[string]unit, len(s.order)),
		order:    s.order,
		logCtx:   parent,
		batched:  make(map[string]unit),

		projections: newProjectionCache(),
	}
	sc.enum = effects.EffectEnum("effect_ive_store_commit_" + sc.id)

	for ns := range initialStates {
		if _, ok := s.models[ns]; !ok {
			log.Effect(parent, log.LogWarn, "initial state for unknown namespace ignored", map[string]interface{}{
				"namespace": ns,
			})
		}
	}

	// pass 1: every container exists before any action map is built
	for _, ns := range s.order {
		u, err := s.models[ns].mount(ns, initialStates[ns], sc)
		if err != nil {
			panic(err)
		}
		sc.units[ns] = u
		sc.registry.allocate(ns)
	}
	// pass 2
	for _, ns := range s.order {
		sc.registry.publish(ns, sc.units[ns].bind())
	}

	ctx, endOfConcurrency := concurrency.WithEffectHandler(ctx, s.config.BufferSize)
	ctx, endOfDispatch := effects.WithFireAndForgetPartitionableEffectHandler(
		ctx,
		NewConfig(max(s.config.BufferSize, len(s.order)), s.config.NumWorkers),
		sc.enum,
		sc.handleCommit,
	)
	sc.ctx = ctx

	ctx = context.WithValue(ctx, scopeKey{s}, sc)
	for _, ns := range s.order {
		ctx = context.WithValue(ctx, namespaceKey{s, ns}, sc.units[ns])
	}

	log.Effect(parent, log.LogDebug, "provider mounted", map[string]interface{}{
		"mount":      sc.id,
		"namespaces": s.order,
	})

	return ctx, func() context.Context {
		sc.close()
		endOfDispatch()
		endOfConcurrency()
		sc.projections.close()
		log.Effect(parent, log.LogDebug, "provider unmounted", map[string]interface{}{
			"mount": sc.id,
		})
		return parent
	}
}

func (s *Store) scopeOf(ctx context.Context) (*scope, error) {
	sc, ok := ctx.Value(scopeKey{s}).(*scope)
	if !ok || sc.closed.Load() {
		return nil, ErrNoProvider
	}
	return sc, nil
}

// Batch runs fn and starts the effects it requested only after fn returns.
// Effect requests made to one effect within fn therefore coalesce into a
// single run with the arguments of the last request. Reducers still apply
// immediately. Batches nest.
func (s *Store) Batch(ctx context.Context, fn func()) error {
	sc, err := s.scopeOf(ctx)
	if err != nil {
		return err
	}
	sc.batch(fn)
	return nil
}

// Subscribe calls fn with every snapshot namespace publishes from now on, in
// version order, on the namespace's dispatcher worker. fn must not block and
// must not unmount the provider.
func (s *Store) Subscribe(ctx context.Context, namespace string, fn func(Snapshot[any])) (func(), error) {
	u, err := s.lookup(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return u.subscribe(fn), nil
}

// Inspect returns the effect status index of the mounted provider.
func (s *Store) Inspect(ctx context.Context) (*inspect.Index, error) {
	sc, err := s.scopeOf(ctx)
	if err != nil {
		return nil, err
	}
	return sc.index, nil
}

// WaitIdle blocks until no effect is requested or running and every snapshot
// has been delivered to subscribers, or ctx is done.
func (s *Store) WaitIdle(ctx context.Context) error {
	sc, err := s.scopeOf(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if sc.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
