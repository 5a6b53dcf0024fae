// Package effects is the small effect runtime the store is built on.
//
// Side effects such as logging and spawning goroutines are delegated to
// handlers that live in a context.Context. A handler is registered with a
// `WithXxxEffectHandler(ctx, ...)` call that returns the extended context and
// a teardown function, and is performed with `FireAndForgetEffect`.
// Teardown cancels the handler's workers and returns the parent context.
//
// Subpackages:
//   - log: structured logging through zap
//   - concurrency: supervised goroutines joined at teardown
//
// Example:
//
//	ctx, endOfLog := log.WithZapEffectHandler(ctx, 16, zap.NewExample())
//	defer endOfLog()
//
//	log.Effect(ctx, log.LogInfo, "mounted", map[string]interface{}{"namespace": "todos"})
package effects
