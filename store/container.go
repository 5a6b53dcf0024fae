package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/effects/concurrency"
	"github.com/on-the-ground/effect_ive_store/effects/log"
	"github.com/on-the-ground/effect_ive_store/store/inspect"
)

// unit is the type-erased face of a container, used by the scope.
type unit interface {
	namespace() string
	bind() *Actions
	actions() *Actions
	snapshot() Snapshot[any]
	subscribe(fn func(Snapshot[any])) func()
	markKicked() bool
	flush(ctx context.Context)
	idle() bool
	isClosed() bool
	close()
}

// container is one namespace of one provider mount: the state, the status of
// every effect and the action map bound to them.
type container[S any] struct {
	ns     string
	model  Model[S]
	sc     *scope
	acts   *Actions
	kicked atomic.Bool

	mu       sync.Mutex
	state    S
	version  uint64
	statuses map[string]EffectStatus
	tracker  *callTracker
	pending  []Snapshot[S]
	subs     []subscription
	nextSub  uint64

	// delivering is set while drained snapshots are handed to subscribers.
	delivering bool
	closed     bool
}

type subscription struct {
	id uint64
	fn func(Snapshot[any])
}

type effectRun[S any] struct {
	name  string
	args  []any
	state S
}

func newContainer[S any](ns string, m Model[S], state S, sc *scope) *container[S] {
	c := &container[S]{
		ns:       ns,
		model:    m,
		sc:       sc,
		state:    state,
		version:  1,
		statuses: make(map[string]EffectStatus, len(m.Effects)),
		tracker:  newCallTracker(),
	}
	for _, name := range m.effectNames() {
		st := EffectStatus{PendingArgs: []any{}}
		c.statuses[name] = st
		c.record(name, st)
	}
	return c
}

func (c *container[S]) namespace() string { return c.ns }
func (c *container[S]) actions() *Actions { return c.acts }
func (c *container[S]) isClosed() bool { return c.sc.closed.Load() }

func (c *container[S]) bind() *Actions {
	c.acts = bindActions(c)
	return c.acts
}

func (c *container[S]) snapshot() Snapshot[any] {
	return c.typedSnapshot().erase()
}

func (c *container[S]) typedSnapshot() Snapshot[S] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *container[S]) snapshotLocked() Snapshot[S] {
	return Snapshot[S]{
		Namespace: c.ns,
		State:     c.state,
		Effects:   c.statuses,
		Version:   c.version,
	}
}

// apply runs mutate under the lock and queues the resulting snapshot.
// It reports false, without calling mutate, once the container is closed.
// A panic in mutate leaves the state untouched and reaches the caller.
func (c *container[S]) apply(mutate func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	mutate()
	c.commitLocked()
	return true
}

func (c *container[S]) commitLocked() {
	c.version++
	c.pending = append(c.pending, c.snapshotLocked())
}

func (c *container[S]) reduce(fn Reducer[S], args []any) {
	if !c.apply(func() { c.state = fn(c.state, args...) }) {
		return
	}
	c.sc.notify(c)
}

func (c *container[S]) request(name string, args []any) {
	if !c.apply(func() { c.setStatusLocked(name, c.tracker.request(c.statuses[name], args)) }) {
		return
	}
	c.sc.notify(c)
}

// setStatusLocked replaces the status map, so snapshots already handed out
// keep the map they were built with.
func (c *container[S]) setStatusLocked(name string, st EffectStatus) {
	next := make(map[string]EffectStatus, len(c.statuses))
	for k, v := range c.statuses {
		next[k] = v
	}
	next[name] = st
	c.statuses = next
	c.record(name, st)
}

func (c *container[S]) record(name string, st EffectStatus) {
	err := c.sc.index.Put(inspect.Record{
		Mount:     c.sc.id,
		Namespace: c.ns,
		Effect:    name,
		IsLoading: st.IsLoading,
		Err:       st.Error,
		CallID:    st.CallID,
		LastRun:   st.LastRun.Duration(),
	})
	if err != nil {
		log.Effect(c.sc.logCtx, log.LogError, "fail to index effect status", map[string]interface{}{
			"namespace": c.ns,
			"effect":    name,
			"err":       err,
		})
	}
}

func (c *container[S]) markKicked() bool {
	return c.kicked.CompareAndSwap(false, true)
}

// flush runs on the namespace's dispatcher worker. It starts every effect with
// an unseen request, then hands queued snapshots to subscribers in order.
// Inside a batch only the snapshots are delivered.
func (c *container[S]) flush(ctx context.Context) {
	c.kicked.Store(false)

	c.mu.Lock()
	if c.closed {
		c.pending = nil
		c.mu.Unlock()
		return
	}
	var runs []effectRun[S]
	// A notice queued before a batch began must not observe the batch's
	// intermediate requests; the batch's end kicks this container again.
	if !c.sc.deferToBatch(c) {
		runs = c.startRunsLocked()
	}
	snaps := c.pending
	c.pending = nil
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.delivering = true
	c.mu.Unlock()

	for _, run := range runs {
		c.spawn(run)
	}
	for _, snap := range snaps {
		erased := snap.erase()
		for _, sub := range subs {
			sub.fn(erased)
		}
	}

	c.mu.Lock()
	c.delivering = false
	c.mu.Unlock()
}

func (c *container[S]) startRunsLocked() []effectRun[S] {
	var runs []effectRun[S]
	for _, name := range c.acts.effects {
		args, ok := c.tracker.observe(name, c.statuses[name])
		if !ok {
			continue
		}
		st := c.statuses[name]
		st.IsLoading = true
		st.Error = nil
		c.setStatusLocked(name, st)
		c.commitLocked()
		runs = append(runs, effectRun[S]{name: name, args: args, state: c.state})
	}
	return runs
}

func (c *container[S]) spawn(run effectRun[S]) {
	body := c.model.Effects[run.name]
	log.Effect(c.sc.logCtx, log.LogDebug, "effect started", map[string]interface{}{
		"mount":     c.sc.id,
		"namespace": c.ns,
		"effect":    run.name,
	})
	concurrency.Effect(c.sc.ctx, func(ctx context.Context) {
		err := runEffect(ctx, body, run.state, c.sc.registry, run.args)
		c.settle(run.name, err)
	})
}

func runEffect[S any](ctx context.Context, body Effect[S], state S, reg *Registry, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEffectPanic, r)
		}
	}()
	return body(ctx, state, reg, args...)
}

// settle records the outcome of a run. After unmount it is a no-op.
func (c *container[S]) settle(name string, err error) {
	applied := c.apply(func() {
		started := c.tracker.settle(name)
		st := c.statuses[name]
		st.IsLoading = false
		st.Error = err
		st.LastRun = effects.NewTimeSpan(started, time.Now())
		c.setStatusLocked(name, st)
	})
	if !applied {
		return
	}

	fields := map[string]interface{}{
		"mount":     c.sc.id,
		"namespace": c.ns,
		"effect":    name,
	}
	if err != nil {
		fields["err"] = err
		log.Effect(c.sc.logCtx, log.LogWarn, "effect failed", fields)
	} else {
		log.Effect(c.sc.logCtx, log.LogDebug, "effect settled", fields)
	}
	c.sc.notify(c)
}

func (c *container[S]) subscribe(fn func(Snapshot[any])) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, sub := range c.subs {
			if sub.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *container[S]) idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) == 0 && !c.delivering && !c.kicked.Load() && c.tracker.idle(c.statuses)
}

func (c *container[S]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
	c.subs = nil
}
