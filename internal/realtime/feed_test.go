package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hirestream-backend/internal/store"
	"go-hirestream-backend/internal/store/memory"
)

type countingHandler struct {
	mu      sync.Mutex
	resyncs int
	events  []store.Event
}

func (h *countingHandler) Resync(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resyncs++
	return nil
}

func (h *countingHandler) Apply(ctx context.Context, ev store.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *countingHandler) snapshot() (int, []store.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resyncs, append([]store.Event(nil), h.events...)
}

func TestFeedClientDeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := memory.New()
	h := &countingHandler{}
	client := NewFeedClient(s, store.CollectionApplications, h)

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	// Wait for the subscription to be live.
	require.Eventually(t, func() bool {
		n, _ := h.snapshot()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Create(ctx, store.CollectionApplications,
		store.Record{ID: "a1", Data: []byte(`{"id":"a1"}`)}))

	require.Eventually(t, func() bool {
		_, evs := h.snapshot()
		return len(evs) == 1
	}, time.Second, 5*time.Millisecond)

	_, evs := h.snapshot()
	assert.Equal(t, store.OpInsert, evs[0].Op)
	assert.Equal(t, "a1", evs[0].Record.ID)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("feed client did not stop on cancel")
	}
}

// flakyStore fails the first subscriptions, then delegates to a real store.
type flakyStore struct {
	*memory.Store
	mu       sync.Mutex
	failures int
}

func (f *flakyStore) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, errors.New("connection refused")
	}
	f.mu.Unlock()
	return f.Store.Subscribe(ctx, collection)
}

func TestFeedClientResubscribesWithBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &flakyStore{Store: memory.New(), failures: 2}
	h := &countingHandler{}
	client := NewFeedClient(s, store.CollectionApplications, h)
	client.baseBackoff = time.Millisecond
	client.maxBackoff = 10 * time.Millisecond

	go func() { _ = client.Run(ctx) }()

	// After two failed attempts the client subscribes and resyncs; the
	// resync after resubscription is what recovers missed changes.
	require.Eventually(t, func() bool {
		n, _ := h.snapshot()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Create(ctx, store.CollectionApplications,
		store.Record{ID: "a1", Data: []byte(`{"id":"a1"}`)}))
	require.Eventually(t, func() bool {
		_, evs := h.snapshot()
		return len(evs) == 1
	}, time.Second, 5*time.Millisecond)
}

// stallingHandler blocks Apply until released, letting a test overflow the
// store-side subscriber buffer deterministically.
type stallingHandler struct {
	countingHandler
	release chan struct{}
	stalled chan struct{}
	once    sync.Once
}

func (h *stallingHandler) Apply(ctx context.Context, ev store.Event) {
	h.once.Do(func() { close(h.stalled) })
	<-h.release
	h.countingHandler.Apply(ctx, ev)
}

func TestFeedClientResyncsAfterSubscriptionFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := memory.New()
	h := &stallingHandler{release: make(chan struct{}), stalled: make(chan struct{})}
	client := NewFeedClient(s, store.CollectionApplications, h)
	client.baseBackoff = time.Millisecond
	client.maxBackoff = 10 * time.Millisecond

	go func() { _ = client.Run(ctx) }()

	require.Eventually(t, func() bool {
		n, _ := h.snapshot()
		return n == 1
	}, time.Second, 5*time.Millisecond)

	// First event parks the client inside Apply; the rest overflow the
	// subscriber buffer and fail the subscription.
	for i := 0; i < 100; i++ {
		_ = s.Create(ctx, store.CollectionApplications,
			store.Record{ID: "x", Data: []byte(`{"id":"x"}`)})
	}
	<-h.stalled
	close(h.release)

	// The client must notice the failure, resubscribe and resync.
	require.Eventually(t, func() bool {
		n, _ := h.snapshot()
		return n >= 2
	}, 2*time.Second, 5*time.Millisecond)
}
