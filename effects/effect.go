package effects

import (
	"context"

	"github.com/on-the-ground/effect_ive_store/effects/internal/handlers"
	"github.com/on-the-ground/effect_ive_store/effects/internal/helper"
	effectmodel "github.com/on-the-ground/effect_ive_store/effects/internal/model"
	sharedHelper "github.com/on-the-ground/effect_ive_store/shared/helper"
	"go.uber.org/zap"
)

// EffectEnum names a handler slot in a context. Handlers registered under the
// same enum shadow outer ones.
type EffectEnum = effectmodel.EffectEnum

// EffectScopeConfig sizes a handler's buffers and worker pool.
type EffectScopeConfig = effectmodel.EffectScopeConfig

// Partitionable payloads are routed to a worker by the hash of their key.
type Partitionable = effectmodel.Partitionable

// ErrNoEffectHandler is raised when an effect is performed without a handler in scope.
var ErrNoEffectHandler = effectmodel.ErrNoEffectHandler

// NewEffectScopeConfig returns a config where non-positive values fall back to 1.
func NewEffectScopeConfig(bufferSize, numWorkers int) EffectScopeConfig {
	return effectmodel.NewEffectScopeConfig(bufferSize, numWorkers)
}

// WithFireAndForgetEffectHandler registers a fire-and-forget effect handler for a given effect enum.
//
// Suitable for one-shot effects like logging or spawning background work.
// This handler executes on a single worker without returning a result.
//
// Usage:
//
//	ctx, end := WithFireAndForgetEffectHandler(ctx, 16, MyEffectEnum, handleFn)
//	defer end()
func WithFireAndForgetEffectHandler[P any](
	ctx context.Context,
	bufferSize int,
	enum EffectEnum,
	handleFn func(context.Context, P),
	teardown ...func(),
) (context.Context, func() context.Context) {
	td := normalizeTeardown(teardown)
	handler := handlers.NewFireAndForgetHandler(ctx, bufferSize, handleFn, td)
	ctxWith := context.WithValue(ctx, enum, handler)
	zap.L().Debug("created fire/forget effect handler", zap.String("effectId", handler.EffectId), zap.Any("enum", enum))

	return ctxWith, func() context.Context {
		handler.Close()
		zap.L().Debug("closed fire/forget effect handler", zap.String("effectId", handler.EffectId), zap.Any("enum", enum))
		return ctx
	}
}

// WithFireAndForgetPartitionableEffectHandler registers a partitioned fire-and-forget handler.
//
// Hash-based dispatching ensures that effects with the same PartitionKey() are handled
// by the same goroutine, in the order they were performed.
func WithFireAndForgetPartitionableEffectHandler[P Partitionable](
	ctx context.Context,
	config EffectScopeConfig,
	enum EffectEnum,
	handleFn func(context.Context, P),
	teardown ...func(),
) (context.Context, func() context.Context) {
	td := normalizeTeardown(teardown)
	handler := handlers.NewPartitionableFireAndForgetHandler(ctx, config, handleFn, td)
	ctxWith := context.WithValue(ctx, enum, handler)
	zap.L().Debug("created partitioned fire/forget effect handler",
		zap.String("effectId", handler.EffectId),
		zap.Any("enum", enum),
		zap.Int("workers", config.NumWorkers),
	)

	return ctxWith, func() context.Context {
		handler.Close()
		zap.L().Debug("closed partitioned fire/forget effect handler", zap.String("effectId", handler.EffectId), zap.Any("enum", enum))
		return ctx
	}
}

// FireAndForgetEffect triggers a fire-and-forget effect for the given enum and payload.
//
// The handler will process the payload asynchronously.
// Panics if no handler is registered for the given enum.
func FireAndForgetEffect[P any](
	ctx context.Context,
	enum EffectEnum,
	payload P,
) {
	handler := sharedHelper.MustGetTypedValue[handlers.FireAndForgetHandler[P]](
		func() (any, error) {
			return helper.GetHandler(ctx, enum)
		},
	)
	handler.FireAndForgetEffect(ctx, payload)
}

// HasHandler reports whether a handler is registered for enum in ctx.
func HasHandler(ctx context.Context, enum EffectEnum) bool {
	_, err := helper.GetHandler(ctx, enum)
	return err == nil
}

// normalizeTeardown flattens optional teardown functions into a single callable.
//
// Accepts either 0 or 1 teardown functions. Panics if more than one is passed.
func normalizeTeardown(teardown []func()) func() {
	switch len(teardown) {
	case 1:
		return teardown[0]
	case 0:
		return func() {}
	default:
		panic("normalizeTeardown: only one or zero teardown functions allowed")
	}
}
