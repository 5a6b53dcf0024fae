package handlers

import (
	"github.com/google/uuid"
)

// effectScope owns a dispatcher and the teardown that releases it.
//
// Close is not safe for concurrent use: a scope is closed once, by the
// goroutine that registered it.
type effectScope[T any] struct {
	EffectId   string
	dispatcher WorkerDispatcher[T]
	closeFn    func()
	closed     bool
}

func (es *effectScope[T]) Close() {
	if !es.closed {
		es.closeFn()
		es.closed = true
	}
}

func newEffectScope[T any](
	dispatcher WorkerDispatcher[T],
	teardown func(),
) *effectScope[T] {
	return &effectScope[T]{
		EffectId:   uuid.New().String(),
		dispatcher: dispatcher,
		closeFn:    teardown,
		closed:     false,
	}
}
