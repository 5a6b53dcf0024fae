package store

import (
	"fmt"
	"maps"
)

// SetState returns a reducer replacing the state. Its single argument is
// either a full S or a func(S) S patch applied to the current state.
// Anything else panics with ErrStateType.
func SetState[S any]() Reducer[S] {
	return func(prev S, args ...any) S {
		if len(args) != 1 {
			panic(fmt.Errorf("%w: setState takes one argument, got %d", ErrStateType, len(args)))
		}
		switch v := args[0].(type) {
		case S:
			return v
		case func(S) S:
			return v(prev)
		default:
			panic(fmt.Errorf("%w: setState got %T", ErrStateType, args[0]))
		}
	}
}

// MergeState returns a reducer shallow-merging map arguments into a copy of
// the state, later keys winning.
func MergeState() Reducer[map[string]any] {
	return func(prev map[string]any, args ...any) map[string]any {
		next := maps.Clone(prev)
		if next == nil {
			next = make(map[string]any)
		}
		for _, arg := range args {
			patch, ok := arg.(map[string]any)
			if !ok {
				panic(fmt.Errorf("%w: mergeState got %T", ErrStateType, arg))
			}
			maps.Copy(next, patch)
		}
		return next
	}
}
