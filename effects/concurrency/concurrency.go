package concurrency

import (
	"context"
	"sync"

	"github.com/on-the-ground/effect_ive_store/effects"
	effectmodel "github.com/on-the-ground/effect_ive_store/effects/internal/model"
	"github.com/on-the-ground/effect_ive_store/effects/log"
)

// WithEffectHandler installs a fire-and-forget concurrency effect handler.
//
// It allows `Effect(ctx, fns...)` to spawn goroutines under a managed scope.
//
//   - Every child gets a context that is cancelled when the handler ends.
//   - The teardown blocks until every child has returned.
//   - A panicking child is recovered and logged; siblings keep running.
//   - Children spawned after teardown started are dropped.
func WithEffectHandler(
	ctx context.Context,
	bufferSize int,
) (context.Context, func() context.Context) {
	sv := newSupervisor()

	return effects.WithFireAndForgetEffectHandler(
		ctx,
		bufferSize,
		effectmodel.EffectConcurrency,
		sv.spawnConcurrentChildren,
		func() {
			sv.waitChildren(ctx)
		},
	)
}

// Effect spawns each function in its own supervised goroutine.
// Panics if no concurrency handler is in scope.
func Effect(ctx context.Context, fns ...func(context.Context)) {
	effects.FireAndForgetEffect[Payload](ctx, effectmodel.EffectConcurrency, fns)
}

type Payload []func(context.Context)

// supervisor tracks the children spawned by one concurrency handler so the
// handler's teardown can cancel and join them. A child releases its own
// context when it returns.
type supervisor struct {
	mu      sync.Mutex
	wg      *sync.WaitGroup
	cancels map[uint64]context.CancelFunc
	nextID  uint64
	closed  bool
}

func newSupervisor() *supervisor {
	return &supervisor{
		wg:      &sync.WaitGroup{},
		cancels: make(map[uint64]context.CancelFunc),
	}
}

// spawnConcurrentChildren starts each function in its own goroutine with its own context.
// It returns once every child has started.
func (s *supervisor) spawnConcurrentChildren(
	parentContext context.Context,
	functions Payload,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	ready := sync.WaitGroup{}
	for _, fn := range functions {
		childCtx, cancel := context.WithCancel(parentContext)
		s.nextID++
		id := s.nextID
		s.cancels[id] = cancel
		s.wg.Add(1)
		ready.Add(1)
		go func(f func(context.Context), ctx context.Context) {
			defer s.wg.Done()
			defer s.release(id)
			defer func() {
				if r := recover(); r != nil {
					log.Effect(parentContext, log.LogError, "panic in child routine", map[string]interface{}{
						"error": r,
					})
				}
			}()
			ready.Done()
			f(ctx)
		}(fn, childCtx)
	}

	ready.Wait()
}

// release cancels and forgets the context of a returned child.
func (s *supervisor) release(id uint64) {
	s.mu.Lock()
	cancel, ok := s.cancels[id]
	delete(s.cancels, id)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *supervisor) retained() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// waitChildren cancels every child and blocks until all of them returned.
func (s *supervisor) waitChildren(ctx context.Context) {
	s.mu.Lock()
	s.closed = true
	cancels := s.cancels
	s.cancels = make(map[uint64]context.CancelFunc)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	log.Effect(ctx, log.LogDebug, "waiting for all routines to finish", nil)
	s.wg.Wait()
	log.Effect(ctx, log.LogDebug, "all routines finished", nil)
}
