package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vatwatch/pkg/requestcontext"
)

func TestPublisherSyncMode(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		Action:  ActionReconciliationCompleted,
		Subject: "310824",
		Outcome: "clean",
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, ActionReconciliationCompleted, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp should be stamped")
}

func TestPublisherStampsContextValues(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithOperator(ctx, "ops@example.com")

	require.NoError(t, pub.Emit(ctx, Event{Action: ActionManualCheck, Subject: "ATU12345678"}))

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "ops@example.com", events[0].Operator)
}

func TestPublisherAsyncDrainsOnClose(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), Event{
			Action:  ActionReconciliationDegraded,
			Subject: "310824",
		})
		require.NoError(t, err)
	}

	pub.Close()

	assert.Len(t, store.Events(), 10, "all events should be drained on close")
}

func TestPublisherCloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(NewMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()
}

func TestPublisherEmitAfterCloseDropsQuietly(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(4))
	pub.Close()

	err := pub.Emit(context.Background(), Event{Action: ActionManualCheck, Subject: "ATU12345678"})

	require.NoError(t, err)
	assert.Empty(t, store.Events())
}

func TestPublisherEmitRacingCloseDoesNotPanic(t *testing.T) {
	pub := NewPublisher(NewMemoryStore(), WithAsyncBuffer(8))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), Event{
				Action:  ActionReconciliationCompleted,
				Subject: "310824",
			})
		}()
	}
	pub.Close()
	wg.Wait()
}
