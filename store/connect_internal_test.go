package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectionCache_MemoisesUntilClosed(t *testing.T) {
	pc := newProjectionCache()
	calls := 0
	fn := func(snap Snapshot[any]) Props {
		calls++
		return Props{"version": snap.Version}
	}
	snap := Snapshot[any]{Namespace: "todos", Version: 3}

	assert.Equal(t, Props{"version": uint64(3)}, pc.project(1, snap, fn))
	assert.Equal(t, Props{"version": uint64(3)}, pc.project(1, snap, fn))
	assert.Equal(t, 1, calls)

	pc.project(2, snap, fn)
	assert.Equal(t, 2, calls, "each connect has its own entries")

	pc.close()
	assert.NotPanics(t, func() {
		assert.Equal(t, Props{"version": uint64(3)}, pc.project(1, snap, fn))
		pc.close()
	})
	assert.Equal(t, 3, calls, "a closed cache calls through")
	_, ok := pc.get("1/todos/3")
	assert.False(t, ok)
}

func TestWithProvider_TeardownClosesProjections(t *testing.T) {
	s := MustCreateStore(map[string]Definition{
		"count": Model[int]{Reducers: map[string]Reducer[int]{"set": SetState[int]()}},
	})
	ctx, unmount := s.WithProvider(t.Context(), nil)
	sc, err := s.scopeOf(ctx)
	assert.NoError(t, err)

	unmount()

	sc.projections.mu.RLock()
	defer sc.projections.mu.RUnlock()
	assert.True(t, sc.projections.closed)
}
