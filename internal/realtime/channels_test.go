package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nfrund/rollcall/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannels_PublishReachesSubscriber(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()
	channels := NewChannels(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Envelope, 1)
	require.NoError(t, channels.Subscribe(ctx, ChannelStudents, func(env Envelope) {
		received <- env
	}))

	event := ChangeEvent{
		Action:    ActionCreated,
		Student:   json.RawMessage(`{"id":"1","firstName":"Ada"}`),
		Timestamp: "2026-01-01T00:00:00Z",
	}
	require.NoError(t, channels.Publish(ctx, ChannelStudents, EventStudentUpdate, event, ""))

	select {
	case env := <-received:
		assert.Equal(t, ChannelStudents, env.Channel)
		assert.Equal(t, EventStudentUpdate, env.Event)
		assert.Empty(t, env.ClientID)

		var got ChangeEvent
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, ActionCreated, got.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fan-out")
	}
}

func TestChannels_FanOutToMultipleSubscribers(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()
	channels := NewChannels(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan Envelope, 1)
	second := make(chan Envelope, 1)
	require.NoError(t, channels.Subscribe(ctx, ChannelChatRoom, func(env Envelope) { first <- env }))
	require.NoError(t, channels.Subscribe(ctx, ChannelChatRoom, func(env Envelope) { second <- env }))

	msg := ChatMessage{Sender: "ada", Text: "hello", Timestamp: "2026-01-01T00:00:00Z"}
	require.NoError(t, channels.Publish(ctx, ChannelChatRoom, EventMessage, msg, "chat-1-abc"))

	for _, ch := range []chan Envelope{first, second} {
		select {
		case env := <-ch:
			assert.Equal(t, EventMessage, env.Event)
			assert.Equal(t, "chat-1-abc", env.ClientID)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for fan-out")
		}
	}
}

func TestChannels_UnknownChannel(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()
	channels := NewChannels(bus)

	err := channels.Publish(context.Background(), "backstage", "noop", nil, "")
	assert.Error(t, err)

	err = channels.Subscribe(context.Background(), "backstage", func(Envelope) {})
	assert.Error(t, err)
}

func TestKnownChannel(t *testing.T) {
	assert.True(t, KnownChannel(ChannelStudents))
	assert.True(t, KnownChannel(ChannelChatRoom))
	assert.False(t, KnownChannel("presence"))
}
