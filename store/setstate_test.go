package store_test

import (
	"testing"

	"github.com/on-the-ground/effect_ive_store/store"
	"github.com/stretchr/testify/assert"
)

func TestSetState_ValueOrPatch(t *testing.T) {
	set := store.SetState[userState]()
	prev := userState{Name: "guest", Todos: 3}

	assert.Equal(t, userState{Name: "ann"}, set(prev, userState{Name: "ann"}))
	assert.Equal(t, userState{Name: "ann", Todos: 3}, set(prev, func(u userState) userState {
		u.Name = "ann"
		return u
	}))
	assert.Equal(t, userState{Name: "guest", Todos: 3}, prev)

	assert.Panics(t, func() { set(prev, 42) })
	assert.Panics(t, func() { set(prev) })
}

func TestMergeState_ShallowMerge(t *testing.T) {
	merge := store.MergeState()
	prev := map[string]any{"name": "guest", "auth": false}

	next := merge(prev, map[string]any{"auth": true}, map[string]any{"name": "ann"})
	assert.Equal(t, map[string]any{"name": "ann", "auth": true}, next)
	assert.Equal(t, map[string]any{"name": "guest", "auth": false}, prev)

	assert.Equal(t, map[string]any{"a": 1}, merge(nil, map[string]any{"a": 1}))
	assert.Panics(t, func() { merge(prev, "nope") })
}
