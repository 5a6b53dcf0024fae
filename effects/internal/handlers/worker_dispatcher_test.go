package handlers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_store/effects/internal/handlers"
	"github.com/stretchr/testify/assert"
)

// notice mimics a namespace commit notice.
type notice struct {
	namespace string
	seq       int
}

func (n notice) PartitionKey() string {
	return n.namespace
}

func TestSingleQueue_DispatchesToHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		called []int
		wg     sync.WaitGroup
	)
	wg.Add(2)

	dispatcher := handlers.NewSingleQueue(ctx, 10, func(_ context.Context, msg int) {
		defer wg.Done()
		mu.Lock()
		called = append(called, msg)
		mu.Unlock()
	})
	assert.Equal(t, 1, dispatcher.NumWorkers())

	ch := dispatcher.GetChannelOf(0)
	ch <- 1
	ch <- 2
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, called)
}

func TestPartitionedQueue_SameNamespaceSameWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := handlers.NewPartitionedQueue(ctx, 4, 10, func(_ context.Context, msg notice) {})
	assert.Equal(t, 4, dispatcher.NumWorkers())

	for _, ns := range []string{"todos", "user", "settings", "a", "b"} {
		first := dispatcher.GetChannelOf(notice{namespace: ns, seq: 0})
		for i := 1; i < 10; i++ {
			assert.Equal(t, first, dispatcher.GetChannelOf(notice{namespace: ns, seq: i}), "namespace %s moved", ns)
		}
	}
}

func TestPartitionedQueue_OrderIsPreservedForSameNamespace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu        sync.Mutex
		processed []int
		wg        sync.WaitGroup
	)
	wg.Add(5)

	dispatcher := handlers.NewPartitionedQueue(ctx, 2, 10, func(_ context.Context, msg notice) {
		defer wg.Done()
		mu.Lock()
		processed = append(processed, msg.seq)
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		msg := notice{namespace: "todos", seq: i}
		dispatcher.GetChannelOf(msg) <- msg
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, processed)
}

func TestWorkerDispatcher_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	called := make(chan int, 2)
	dispatcher := handlers.NewSingleQueue(ctx, 1, func(_ context.Context, msg int) {
		called <- msg
	})

	dispatcher.GetChannelOf(0) <- 7

	select {
	case got := <-called:
		assert.Equal(t, 7, got)
	case <-time.After(1 * time.Second):
		t.Fatal("handler was not called before context cancel")
	}

	cancel()
	dispatcher.Wait()

	select {
	case <-dispatcher.Done():
	default:
		t.Fatal("dispatcher should report done after cancel")
	}

	// the channel stays open: a late message is buffered, never handled
	dispatcher.GetChannelOf(0) <- 8
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, called)
}
