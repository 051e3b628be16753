package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/pubsub"
	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBus implements pubsub.Bus and rejects every publish.
type failingBus struct{}

func (failingBus) Publish(ctx context.Context, msg pubsub.Message) error {
	return errors.New("broker unavailable")
}

func (failingBus) Subscribe(ctx context.Context, topic string, handler pubsub.Handler) error {
	return nil
}

func (failingBus) Close() error { return nil }

func collectEvents(t *testing.T, channels *realtime.Channels) chan realtime.Envelope {
	t.Helper()
	received := make(chan realtime.Envelope, 8)
	require.NoError(t, channels.Subscribe(context.Background(), realtime.ChannelStudents, func(env realtime.Envelope) {
		received <- env
	}))
	return received
}

func TestNotifier_ExactlyOneEventPerAction(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()
	channels := realtime.NewChannels(bus)
	received := collectEvents(t, channels)

	notifier := NewNotifier(channels)
	student := &domain.Student{ID: "1", FirstName: "Ada", LastName: "Lovelace"}

	for _, action := range []realtime.ChangeAction{realtime.ActionCreated, realtime.ActionUpdated} {
		notifier.NotifyStudent(context.Background(), action, student)

		select {
		case env := <-received:
			assert.Equal(t, realtime.EventStudentUpdate, env.Event)

			var event realtime.ChangeEvent
			require.NoError(t, json.Unmarshal(env.Data, &event))
			assert.Equal(t, action, event.Action)
			assert.NotEmpty(t, event.Timestamp)

			var got domain.Student
			require.NoError(t, json.Unmarshal(event.Student, &got))
			assert.Equal(t, "Ada", got.FirstName)
		case <-time.After(2 * time.Second):
			t.Fatalf("no event received for action %s", action)
		}
	}

	// Exactly one event per call, nothing queued behind.
	select {
	case env := <-received:
		t.Fatalf("unexpected extra event %s", env.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifier_DeletedUsesPartialSubject(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()
	channels := realtime.NewChannels(bus)
	received := collectEvents(t, channels)

	notifier := NewNotifier(channels)
	notifier.NotifyDeleted(context.Background(), &domain.Student{ID: "7", FirstName: "Ada", LastName: "Lovelace"})

	select {
	case env := <-received:
		var event realtime.ChangeEvent
		require.NoError(t, json.Unmarshal(env.Data, &event))
		assert.Equal(t, realtime.ActionDeleted, event.Action)

		var subject DeletedSubject
		require.NoError(t, json.Unmarshal(event.Student, &subject))
		assert.Equal(t, "7", subject.ID)
		assert.Equal(t, "Ada Lovelace", subject.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no deletion event received")
	}
}

func TestNotifier_SwallowsPublishFailure(t *testing.T) {
	channels := realtime.NewChannels(failingBus{})
	notifier := NewNotifier(channels)

	// Must not panic or propagate: the mutation already succeeded and its
	// outcome cannot depend on the broadcast.
	notifier.NotifyStudent(context.Background(), realtime.ActionCreated, &domain.Student{ID: "1"})
	notifier.NotifyDeleted(context.Background(), &domain.Student{ID: "1"})
}
