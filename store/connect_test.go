package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countTitle(ctx context.Context, props store.Props) string {
	return fmt.Sprintf("%v|%v", props["count"], props["title"])
}

func TestConnect_OwnPropsWin(t *testing.T) {
	s := newStore(t, noFetch)
	ctx := mount(t, s, nil)

	connected := store.Connect[string](s, "todos",
		func(snap store.Snapshot[any]) store.Props {
			return store.Props{
				"count": len(snap.State.(todosState).DataSource),
				"title": "from state",
			}
		},
		func(acts *store.Actions) store.Props {
			return store.Props{"title": "from actions", "add": acts.Must("add")}
		},
	)(countTitle)

	assert.Equal(t, "0|from actions", connected(ctx, nil))
	assert.Equal(t, "0|own", connected(ctx, store.Props{"title": "own"}))

	s.MustUseModelAction(ctx, "todos").Must("add")(todo{Name: "a"})
	assert.Equal(t, "1|from actions", connected(ctx, nil))
}

func TestConnect_ActionsArePassedThrough(t *testing.T) {
	s := newStore(t, noFetch)
	ctx := mount(t, s, nil)

	connected := store.Connect[int](s, "todos", nil, func(acts *store.Actions) store.Props {
		return store.Props{"add": acts.Must("add")}
	})(func(ctx context.Context, props store.Props) int {
		props["add"].(store.Action)(todo{Name: "from view"})
		return len(props)
	})

	assert.Equal(t, 1, connected(ctx, nil))
	assert.Equal(t, "from view", todosOf(t, ctx, s).State.DataSource[0].Name)
}

func TestConnect_NilMappersInjectNothing(t *testing.T) {
	s := newStore(t, noFetch)
	ctx := mount(t, s, nil)

	connected := store.Connect[int](s, "todos", nil, nil)(func(ctx context.Context, props store.Props) int {
		return len(props)
	})
	assert.Equal(t, 0, connected(ctx, nil))
	assert.Equal(t, 1, connected(ctx, store.Props{"x": 1}))
}

func TestConnect_UnknownNamespacePanics(t *testing.T) {
	s := newStore(t, noFetch)
	ctx := mount(t, s, nil)

	connected := store.Connect[string](s, "nope", nil, nil)(countTitle)
	assert.Panics(t, func() { connected(ctx, nil) })
}

func TestConnect_MapStateOncePerVersion(t *testing.T) {
	s := newStore(t, noFetch)
	ctx := mount(t, s, nil)

	calls := 0
	connected := store.Connect[string](s, "todos", func(snap store.Snapshot[any]) store.Props {
		calls++
		return store.Props{"count": len(snap.State.(todosState).DataSource)}
	}, nil)(countTitle)

	connected(ctx, nil)
	connected(ctx, nil)
	assert.Equal(t, 1, calls)

	s.MustUseModelAction(ctx, "todos").Must("add")(todo{Name: "a"})
	assert.Equal(t, "1|<nil>", connected(ctx, nil))
	assert.Equal(t, 2, calls)
}

func TestMount_RerendersOnEverySnapshot(t *testing.T) {
	s := newStore(t, noFetch)
	ctx := mount(t, s, nil)

	connected := store.Connect[string](s, "todos", func(snap store.Snapshot[any]) store.Props {
		return store.Props{"count": len(snap.State.(todosState).DataSource)}
	}, nil)(countTitle)

	var mu sync.Mutex
	var frames []string
	last := func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(frames) == 0 {
			return ""
		}
		return frames[len(frames)-1]
	}

	stop, err := store.Mount(ctx, s, "todos", connected, store.Props{"title": "list"}, func(v string) {
		mu.Lock()
		defer mu.Unlock()
		frames = append(frames, v)
	})
	require.NoError(t, err)
	assert.Equal(t, "0|list", last())

	s.MustUseModelAction(ctx, "todos").Must("add")(todo{Name: "a"})
	require.Eventually(t, func() bool { return last() == "1|list" }, time.Second, 5*time.Millisecond)

	stop()
	s.MustUseModelAction(ctx, "todos").Must("add")(todo{Name: "b"})
	waitIdle(t, ctx, s)
	assert.Equal(t, "1|list", last())

	_, err = store.Mount(ctx, s, "nope", connected, nil, func(string) {})
	assert.ErrorIs(t, err, store.ErrUnknownNamespace)
}
