package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/on-the-ground/effect_ive_store/effects"
	"github.com/on-the-ground/effect_ive_store/store/inspect"
)

// commitNotice tells the dispatcher a namespace has unprocessed commits.
// Notices are partitioned by namespace, so one namespace is always flushed
// by the same worker, one flush at a time.
type commitNotice string

func (n commitNotice) PartitionKey() string { return string(n) }

// scope is the runtime of one provider mount.
type scope struct {
	id       string
	enum     effects.EffectEnum
	registry *Registry
	index    *inspect.Index
	units    map[string]unit
	order    []string

	// logCtx is the context the provider was mounted with; ctx adds the
	// dispatcher and the concurrency supervisor to it.
	logCtx context.Context
	ctx    context.Context

	// lifecycle keeps close from overlapping a flush.
	lifecycle sync.RWMutex
	closed    atomic.Bool

	batchMu    sync.Mutex
	batchDepth int
	batched    map[string]unit

	projections *projectionCache
}

func (sc *scope) handleCommit(ctx context.Context, n commitNotice) {
	sc.lifecycle.RLock()
	defer sc.lifecycle.RUnlock()
	if sc.closed.Load() {
		return
	}
	if u, ok := sc.units[string(n)]; ok {
		u.flush(ctx)
	}
}

// notify schedules a flush of u, or defers it to the end of the current batch.
func (sc *scope) notify(u unit) {
	if sc.deferToBatch(u) {
		return
	}
	sc.kick(u)
}

// kick sends at most one outstanding notice per namespace; the flush it
// triggers picks up every commit made before the flush started.
func (sc *scope) kick(u unit) {
	if sc.closed.Load() || !u.markKicked() {
		return
	}
	effects.FireAndForgetEffect(sc.ctx, sc.enum, commitNotice(u.namespace()))
}

// deferToBatch reports whether a batch is open, and if so queues u for the
// kick at the batch's end.
func (sc *scope) deferToBatch(u unit) bool {
	sc.batchMu.Lock()
	defer sc.batchMu.Unlock()
	if sc.batchDepth == 0 {
		return false
	}
	sc.batched[u.namespace()] = u
	return true
}

func (sc *scope) batch(fn func()) {
	sc.batchMu.Lock()
	sc.batchDepth++
	sc.batchMu.Unlock()

	defer func() {
		sc.batchMu.Lock()
		sc.batchDepth--
		var due []unit
		if sc.batchDepth == 0 {
			for _, ns := range sc.order {
				if u, ok := sc.batched[ns]; ok {
					due = append(due, u)
				}
			}
			clear(sc.batched)
		}
		sc.batchMu.Unlock()

		for _, u := range due {
			sc.kick(u)
		}
	}()

	fn()
}

func (sc *scope) idle() bool {
	for _, ns := range sc.order {
		if !sc.units[ns].idle() {
			return false
		}
	}
	return true
}

// close waits for a running flush to end, then turns every container into a
// no-op. It must not be called from a subscriber.
func (sc *scope) close() {
	sc.lifecycle.Lock()
	defer sc.lifecycle.Unlock()
	if sc.closed.Swap(true) {
		return
	}
	for _, ns := range sc.order {
		sc.units[ns].close()
	}
}
