package handlers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects/internal/handlers"
	effectmodel "github.com/on-the-ground/effect_ive_store/effects/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireAndForgetHandler_BasicExecution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)

	handler := handlers.NewFireAndForgetHandler(
		ctx,
		10,
		func(ctx context.Context, msg string) {
			received <- msg
		},
		func() {},
	)
	defer handler.Close()

	handler.FireAndForgetEffect(ctx, "hello")

	select {
	case msg := <-received:
		assert.Equal(t, "hello", msg)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for handler")
	}
}

func TestFireAndForgetHandler_CancelledContextDropsPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var mu sync.Mutex
	var called bool

	handler := handlers.NewFireAndForgetHandler(
		ctx,
		10,
		func(ctx context.Context, msg string) {
			mu.Lock()
			called = true
			mu.Unlock()
		},
		func() {},
	)
	defer handler.Close()

	handler.FireAndForgetEffect(ctx, "should-not-send")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called, "handler should not have been called")
}

func TestFireAndForgetHandler_CloseRunsTeardownOnce(t *testing.T) {
	ctx := context.Background()
	teardowns := 0

	handler := handlers.NewFireAndForgetHandler(
		ctx,
		1,
		func(ctx context.Context, msg int) {},
		func() { teardowns++ },
	)
	require.NotEmpty(t, handler.EffectId)

	handler.Close()
	handler.Close()
	assert.Equal(t, 1, teardowns)

	// sending after close must not panic the caller
	assert.NotPanics(t, func() {
		handler.FireAndForgetEffect(ctx, 1)
	})
}

func TestPartitionableFireAndForgetHandler_SameNamespaceKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []int
	done := make(chan struct{})

	handler := handlers.NewPartitionableFireAndForgetHandler(
		ctx,
		effectmodel.NewEffectScopeConfig(8, 3),
		func(ctx context.Context, msg notice) {
			mu.Lock()
			defer mu.Unlock()
			if msg.namespace != "todos" {
				return
			}
			received = append(received, msg.seq)
			if len(received) == 5 {
				close(done)
			}
		},
		func() {},
	)
	defer handler.Close()

	for i := 0; i < 5; i++ {
		handler.FireAndForgetEffect(ctx, notice{namespace: "todos", seq: i})
		handler.FireAndForgetEffect(ctx, notice{namespace: "user", seq: i})
	}

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for notices")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, received)
}

func TestFireAndForgetHandler_CloseHandlesBufferedPayloads(t *testing.T) {
	ctx := context.Background()
	block := make(chan struct{})
	var mu sync.Mutex
	var received []int

	handler := handlers.NewFireAndForgetHandler(
		ctx,
		8,
		func(ctx context.Context, msg int) {
			<-block
			mu.Lock()
			received = append(received, msg)
			mu.Unlock()
		},
		func() {},
	)

	for i := 0; i < 4; i++ {
		handler.FireAndForgetEffect(ctx, i)
	}
	close(block)
	handler.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3}, received)
}

func TestFireAndForgetHandler_SendAfterCloseNeverBlocks(t *testing.T) {
	ctx := context.Background()
	handler := handlers.NewPartitionableFireAndForgetHandler(
		ctx,
		effectmodel.NewEffectScopeConfig(1, 2),
		func(ctx context.Context, msg notice) {},
		func() {},
	)
	handler.Close()

	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for i := 0; i < 10; i++ {
			handler.FireAndForgetEffect(ctx, notice{namespace: "todos", seq: i})
		}
	}()

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("send after close blocked")
	}
}
