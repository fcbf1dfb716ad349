package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/chatflowhq/chatflow/pkg/channels/gochannel"
	"github.com/chatflowhq/chatflow/pkg/eventbus"
	"github.com/chatflowhq/chatflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)
	received := make(chan *events.DocumentSaved, 1)

	err := bus.Handle(events.DocumentSavedEvent, func(ctx context.Context, event interface{}) error {
		saved, ok := event.(*events.DocumentSaved)
		require.True(t, ok)

		received <- saved

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	published := events.DocumentSaved{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.DocumentSavedEvent,
			Timestamp:  time.Now().UTC(),
			DocumentID: "doc-1",
		},
		Version:   3,
		NodeCount: 4,
		EdgeCount: 3,
	}

	require.NoError(t, bus.Publish(t.Context(), "doc-1", published))

	select {
	case saved := <-received:
		assert.Equal(t, "doc-1", saved.DocumentID)
		assert.EqualValues(t, 3, saved.Version)
		assert.Equal(t, 4, saved.NodeCount)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for document.saved event")
	}
}

func TestWatermillEventBus_UnhandledTypeIsIgnored(t *testing.T) {
	bus := newTestBus(t)
	received := make(chan struct{}, 1)

	err := bus.Handle(events.DocumentDeletedEvent, func(ctx context.Context, event interface{}) error {
		received <- struct{}{}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	created := events.DocumentCreated{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.DocumentCreatedEvent,
			Timestamp:  time.Now().UTC(),
			DocumentID: "doc-2",
		},
		Name: "Welcome Flow",
	}

	require.NoError(t, bus.Publish(t.Context(), "doc-2", created))

	select {
	case <-received:
		t.Fatal("handler for a different event type should not fire")
	case <-time.After(200 * time.Millisecond):
	}
}
