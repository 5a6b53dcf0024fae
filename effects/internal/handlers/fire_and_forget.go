package handlers

import (
	"context"

	effectmodel "github.com/on-the-ground/effect_ive_store/effects/internal/model"
)

// NewFireAndForgetHandler runs handleFn on a single worker goroutine.
func NewFireAndForgetHandler[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
	teardown func(),
) FireAndForgetHandler[T] {
	ctx, cancelFn := context.WithCancel(ctx)
	dispatcher := NewSingleQueue(ctx, bufferSize, handleFn)
	return FireAndForgetHandler[T]{
		effectScope: newEffectScope(
			dispatcher,
			func() {
				cancelFn()
				dispatcher.Wait()
				teardown()
			},
		),
	}
}

// NewPartitionableFireAndForgetHandler fans payloads out to config.NumWorkers
// goroutines by the hash of their PartitionKey.
func NewPartitionableFireAndForgetHandler[T effectmodel.Partitionable](
	ctx context.Context,
	config effectmodel.EffectScopeConfig,
	handleFn func(context.Context, T),
	teardown func(),
) FireAndForgetHandler[T] {
	ctx, cancelFn := context.WithCancel(ctx)
	dispatcher := NewPartitionedQueue(ctx, config.NumWorkers, config.BufferSize, handleFn)
	return FireAndForgetHandler[T]{
		effectScope: newEffectScope(
			dispatcher,
			func() {
				cancelFn()
				dispatcher.Wait()
				teardown()
			},
		),
	}
}

type FireAndForgetHandler[T any] struct {
	*effectScope[T]
}

// FireAndForgetEffect enqueues payload and returns without waiting for it to be handled.
// The payload is dropped when ctx is done or the handler is already closed.
func (ffh FireAndForgetHandler[T]) FireAndForgetEffect(ctx context.Context, payload T) {
	done := ffh.dispatcher.Done()
	select {
	case <-ctx.Done():
		return
	case <-done:
		return
	default:
	}
	select {
	case <-ctx.Done():
	case <-done:
	case ffh.dispatcher.GetChannelOf(payload) <- payload:
	}
}
