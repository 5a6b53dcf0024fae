package store

import "github.com/on-the-ground/effect_ive_store/effects"

// Config sizes the runtime started by each provider mount.
//
// BufferSize is the capacity of each dispatcher and spawner queue.
// NumWorkers is the number of dispatcher workers; namespaces are spread over
// them by hash, and one namespace is always served by the same worker.
type Config = effects.EffectScopeConfig

// NewConfig returns a Config where non-positive values fall back to 1.
func NewConfig(bufferSize, numWorkers int) Config {
	return effects.NewEffectScopeConfig(bufferSize, numWorkers)
}

// DefaultConfig is used when CreateStore gets no WithConfig option.
var DefaultConfig = NewConfig(16, 1)

// Option customizes a Store.
type Option func(*Store)

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		s.config = NewConfig(cfg.BufferSize, cfg.NumWorkers)
	}
}
