package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	ristretto "github.com/dgraph-io/ristretto/v2"
)

// Props are the named inputs of a Component.
type Props map[string]any

// Component renders props into a view of type V. The runtime that consumes V
// is up to the caller.
type Component[V any] func(ctx context.Context, props Props) V

// MapState projects a snapshot into props.
type MapState func(Snapshot[any]) Props

// MapActions projects an action map into props.
type MapActions func(*Actions) Props

// Connect returns a decorator injecting props derived from namespace into a
// component. The injected props are, in increasing precedence, the result of
// mapState, the result of mapActions and the component's own props. A nil
// mapper injects nothing.
//
// The decorated component panics if namespace is unknown or no provider is
// mounted in its context.
func Connect[V any](s *Store, namespace string, mapState MapState, mapActions MapActions) func(Component[V]) Component[V] {
	id := s.connects.Add(1)
	return func(inner Component[V]) Component[V] {
		return func(ctx context.Context, own Props) V {
			snap, acts := s.MustUseModel(ctx, namespace)
			props := make(Props, len(own))
			if mapState != nil {
				sc, err := s.scopeOf(ctx)
				if err != nil {
					panic(err)
				}
				maps.Copy(props, sc.projections.project(id, snap, mapState))
			}
			if mapActions != nil {
				maps.Copy(props, mapActions(acts))
			}
			maps.Copy(props, own)
			return inner(ctx, props)
		}
	}
}

// projectionCache memoises mapState results of one mount. It is closed with
// the mount; a closed cache calls mapState every time.
type projectionCache struct {
	mu     sync.RWMutex
	cache  *ristretto.Cache[string, Props]
	closed bool
}

func newProjectionCache() *projectionCache {
	cache, err := ristretto.NewCache(&ristretto.Config[string, Props]{
		NumCounters:        1 << 10,
		MaxCost:            1 << 8,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return &projectionCache{}
	}
	return &projectionCache{cache: cache}
}

// project calls fn once per (connect, namespace, version).
func (pc *projectionCache) project(connect uint64, snap Snapshot[any], fn MapState) Props {
	key := fmt.Sprintf("%d/%s/%d", connect, snap.Namespace, snap.Version)
	if props, ok := pc.get(key); ok {
		return props
	}
	props := fn(snap)
	pc.set(key, props)
	return props
}

func (pc *projectionCache) get(key string) (Props, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if pc.closed || pc.cache == nil {
		return nil, false
	}
	return pc.cache.Get(key)
}

func (pc *projectionCache) set(key string, props Props) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if pc.closed || pc.cache == nil {
		return
	}
	if pc.cache.Set(key, props, 1) {
		pc.cache.Wait()
	}
}

func (pc *projectionCache) close() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.closed {
		return
	}
	pc.closed = true
	if pc.cache != nil {
		pc.cache.Close()
	}
}

// Mount renders component into sink once, then again for every newer
// snapshot of namespace until the returned stop func is called. Renders are
// serialised and never go back in version.
func Mount[V any](
	ctx context.Context,
	s *Store,
	namespace string,
	component Component[V],
	own Props,
	sink func(V),
) (func(), error) {
	var (
		mu   sync.Mutex
		last uint64
	)
	render := func(version uint64) {
		mu.Lock()
		defer mu.Unlock()
		if version <= last {
			return
		}
		last = version
		sink(component(ctx, own))
	}

	stop, err := s.Subscribe(ctx, namespace, func(snap Snapshot[any]) {
		render(snap.Version)
	})
	if err != nil {
		return nil, err
	}
	snap, err := s.UseModelState(ctx, namespace)
	if err != nil {
		stop()
		return nil, err
	}
	render(snap.Version)
	return stop, nil
}
