package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherEmit(t *testing.T) {
	t.Run("stamps missing timestamp", func(t *testing.T) {
		p := NewPublisher(4)
		p.Emit(context.Background(), Event{Outcome: "created"})

		event := <-p.Inbox()
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("drops instead of blocking when full", func(t *testing.T) {
		p := NewPublisher(1)
		p.Emit(context.Background(), Event{Outcome: "created"})
		p.Emit(context.Background(), Event{Outcome: "created"})

		assert.Equal(t, int64(1), p.Dropped())
	})
}

func TestWorkerFanOut(t *testing.T) {
	p := NewPublisher(8)
	store := NewMemoryStore(0)
	failing := &failingSink{}
	worker := NewWorker(p.Inbox(), store, failing)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = worker.Run(ctx)
	}()

	p.Emit(ctx, Event{Outcome: "created", DeviceID: "d1"})
	p.Emit(ctx, Event{Outcome: "rejected_bot", DeviceID: "d2"})

	require.Eventually(t, func() bool {
		events, err := store.List(context.Background())
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	wg.Wait()

	// A failing sink must not prevent the healthy one from persisting.
	events, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorkerFlushOnShutdown(t *testing.T) {
	p := NewPublisher(8)
	store := NewMemoryStore(0)
	worker := NewWorker(p.Inbox(), store)

	// Queue before the worker starts, then cancel immediately: Run must
	// flush what is buffered.
	p.Emit(context.Background(), Event{Outcome: "created"})
	p.Emit(context.Background(), Event{Outcome: "challenged"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := worker.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	events, listErr := store.List(context.Background())
	require.NoError(t, listErr)
	assert.Len(t, events, 2)
}

func TestMemoryStoreBounded(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, Event{Outcome: "created"}))
	}
	events, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

type failingSink struct{}

func (f *failingSink) Append(context.Context, Event) error {
	return errors.New("sink down")
}
