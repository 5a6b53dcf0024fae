package store

import "github.com/on-the-ground/effect_ive_store/effects"

// EffectStatus is the lifecycle record of one effect of a namespace.
//
// CallID starts at 0 and grows by one on every invocation request, not on
// completion. PendingArgs holds the arguments of the latest request.
// LastRun spans the start and settlement of the most recent finished run.
type EffectStatus struct {
	IsLoading   bool
	Error       error
	PendingArgs []any
	CallID      uint64
	LastRun     effects.TimeSpan
}

// Snapshot is an immutable view of a namespace: its state plus the status of
// every effect. Each transition produces a new snapshot with a higher Version;
// older snapshots stay valid. Effects must be treated as read-only.
type Snapshot[S any] struct {
	Namespace string
	State     S
	Effects   map[string]EffectStatus
	Version   uint64
}

// Effect returns the status of the named effect.
func (s Snapshot[S]) Effect(name string) (EffectStatus, bool) {
	st, ok := s.Effects[name]
	return st, ok
}

func (s Snapshot[S]) erase() Snapshot[any] {
	return Snapshot[any]{
		Namespace: s.Namespace,
		State:     s.State,
		Effects:   s.Effects,
		Version:   s.Version,
	}
}
