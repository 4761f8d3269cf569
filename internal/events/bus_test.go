package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) (*Bus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBus(client), mr
}

func TestPublishSubscribe(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, stop, err := bus.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer stop()

	require.NoError(t, bus.Publish(ctx, Event{Type: TypeDocumentApproved, ProjectID: "p2", DocID: "other"}))
	require.NoError(t, bus.Publish(ctx, Event{Type: TypeDocumentApproved, ProjectID: "p1", DocType: "po", DocID: "po-1"}))

	select {
	case ev := <-ch:
		assert.Equal(t, "po-1", ev.DocID)
		assert.Equal(t, TypeDocumentApproved, ev.Type)
		assert.False(t, ev.At.IsZero())
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestPublish_NoProjectIsDropped(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	ch, stop, err := bus.Subscribe(ctx, "")
	require.NoError(t, err)
	defer stop()

	require.NoError(t, bus.Publish(ctx, Event{Type: TypeDocumentApproved}))
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-ctx.Done():
	}
}

func TestSubscribe_StopClosesChannel(t *testing.T) {
	bus, _ := newBus(t)
	ch, stop, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	stop()
	stop()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}
