package handlers

import (
	"context"
	"sync"

	effectmodel "github.com/on-the-ground/effect_ive_store/effects/internal/model"
)

// --- common interface ---

type WorkerDispatcher[T any] interface {
	GetChannelOf(msg T) chan T
	NumWorkers() int
	// Done is closed once the workers stop taking messages. Channels are
	// never closed; senders select on Done instead.
	Done() <-chan struct{}
	// Wait blocks until every worker has returned.
	Wait()
}

// --- single queue ---

type singleQueue[T any] struct {
	effectCh chan T
	done     <-chan struct{}
	workers  *sync.WaitGroup
}

func (q singleQueue[T]) GetChannelOf(_ T) chan T {
	return q.effectCh
}

func (q singleQueue[T]) NumWorkers() int { return 1 }

func (q singleQueue[T]) Done() <-chan struct{} { return q.done }

func (q singleQueue[T]) Wait() { q.workers.Wait() }

func NewSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	effCh := make(chan T, bufferSize)
	ready := make(chan struct{})
	workers := &sync.WaitGroup{}
	workers.Add(1)

	go func(ch chan T) {
		defer workers.Done()
		close(ready)
		work(ctx, ch, handleFn)
	}(effCh)

	<-ready

	return singleQueue[T]{effectCh: effCh, done: ctx.Done(), workers: workers}
}

// --- partitioned queue ---

type partitionedQueue[T effectmodel.Partitionable] struct {
	effectChs []chan T
	done      <-chan struct{}
	workers   *sync.WaitGroup
}

func (pq partitionedQueue[T]) GetChannelOf(msg T) chan T {
	idx := getIndexByHash(msg, len(pq.effectChs))
	return pq.effectChs[idx]
}

func (pq partitionedQueue[T]) NumWorkers() int { return len(pq.effectChs) }

func (pq partitionedQueue[T]) Done() <-chan struct{} { return pq.done }

func (pq partitionedQueue[T]) Wait() { pq.workers.Wait() }

// NewPartitionedQueue starts numWorkers goroutines, each draining its own channel.
// Messages sharing a PartitionKey always land on the same worker, so they are
// handled one at a time and in send order.
func NewPartitionedQueue[T effectmodel.Partitionable](
	ctx context.Context,
	numWorkers, bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	channels := make([]chan T, numWorkers)
	ready := sync.WaitGroup{}
	workers := &sync.WaitGroup{}
	for i := 0; i < numWorkers; i++ {
		ready.Add(1)
		workers.Add(1)
		ch := make(chan T, bufferSize)
		go func(ch chan T) {
			defer workers.Done()
			ready.Done()
			work(ctx, ch, handleFn)
		}(ch)
		channels[i] = ch
	}
	ready.Wait()
	return partitionedQueue[T]{effectChs: channels, done: ctx.Done(), workers: workers}
}

// work handles messages until ctx is done, then handles what is already
// buffered and returns.
func work[T any](ctx context.Context, ch chan T, handleFn func(context.Context, T)) {
	for {
		select {
		case msg := <-ch:
			handleFn(ctx, msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-ch:
					handleFn(ctx, msg)
				default:
					return
				}
			}
		}
	}
}
