package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/scheduler"
)

// chatStubFeed mimics an attached channel: handlers are registered with Bind
// and events are pushed in with deliver. Published events are recorded but,
// like the real echo-suppressed channel, never delivered back.
type chatStubFeed struct {
	mu        sync.Mutex
	handlers  map[string][]func(realtime.Envelope)
	published []realtime.Envelope
	state     realtime.ConnState
	closed    bool
}

func newChatStubFeed() *chatStubFeed {
	return &chatStubFeed{
		handlers: make(map[string][]func(realtime.Envelope)),
		state:    realtime.StateConnected,
	}
}

func (f *chatStubFeed) Connect(context.Context) error { return nil }

func (f *chatStubFeed) Bind(event string, fn func(realtime.Envelope)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = append(f.handlers[event], fn)
}

func (f *chatStubFeed) OnStateChange(func(realtime.ConnState)) {}

func (f *chatStubFeed) State() realtime.ConnState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *chatStubFeed) Publish(_ context.Context, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, realtime.Envelope{
		Channel: realtime.ChannelChatRoom,
		Event:   event,
	})
	return nil
}

func (f *chatStubFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *chatStubFeed) deliver(t *testing.T, event string, payload any) {
	t.Helper()
	f.mu.Lock()
	handlers := append([]func(realtime.Envelope){}, f.handlers[event]...)
	f.mu.Unlock()
	env := realtime.Envelope{
		Channel: realtime.ChannelChatRoom,
		Event:   event,
		Data:    mustJSON(t, payload),
	}
	for _, fn := range handlers {
		fn(env)
	}
}

func (f *chatStubFeed) publishedEvents(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, env := range f.published {
		if env.Event == event {
			count++
		}
	}
	return count
}

func startRoom(t *testing.T, sender string) (*Room, *chatStubFeed, *scheduler.Manual) {
	t.Helper()
	feed := newChatStubFeed()
	sched := scheduler.NewManual()
	room := NewRoom(feed, sched, sender)
	require.NoError(t, room.Start(context.Background()))
	return room, feed, sched
}

func TestRoomAppendsMessagesInArrivalOrder(t *testing.T) {
	room, feed, _ := startRoom(t, "alice")

	feed.deliver(t, realtime.EventMessage, realtime.ChatMessage{Sender: "bob", Text: "first"})
	feed.deliver(t, realtime.EventMessage, realtime.ChatMessage{Sender: "carol", Text: "second"})

	msgs := room.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
}

func TestRoomSendCommitsLocallyAndPublishesOnce(t *testing.T) {
	room, feed, _ := startRoom(t, "alice")

	room.Send(context.Background(), "hello")

	msgs := room.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice", msgs[0].Sender)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.NotEmpty(t, msgs[0].Timestamp)

	// Nothing comes back over the suppressed channel, so the local copy
	// stays the only copy.
	assert.Equal(t, 1, feed.publishedEvents(realtime.EventMessage))
	assert.Len(t, room.Messages(), 1)
}

func TestRoomSendEndsTypingBurst(t *testing.T) {
	room, feed, sched := startRoom(t, "alice")
	ctx := context.Background()

	room.KeyPress(ctx)
	room.Send(ctx, "hello")

	// One true from the keystroke, one false from sending.
	assert.Equal(t, 2, feed.publishedEvents(realtime.EventTyping))

	// The debounce window was cancelled by Send.
	sched.Advance(TypingWindow)
	assert.Equal(t, 2, feed.publishedEvents(realtime.EventTyping))
}

func TestRoomTypingSetSemantics(t *testing.T) {
	room, feed, _ := startRoom(t, "alice")

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})
	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "carol", IsTyping: true})
	// A duplicate true is idempotent.
	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})

	assert.Equal(t, []string{"bob", "carol"}, room.TypingPeers())

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: false})
	assert.Equal(t, []string{"carol"}, room.TypingPeers())

	// Clearing an absent peer is a no-op.
	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "dave", IsTyping: false})
	assert.Equal(t, []string{"carol"}, room.TypingPeers())
}

func TestRoomTypingExpiresWithoutFalse(t *testing.T) {
	room, feed, sched := startRoom(t, "alice")

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})
	require.Equal(t, []string{"bob"}, room.TypingPeers())

	// The final false got lost; the receiver-side expiry cleans up.
	sched.Advance(typingExpiry)
	assert.Empty(t, room.TypingPeers())
}

func TestRoomTypingRefreshExtendsExpiry(t *testing.T) {
	room, feed, sched := startRoom(t, "alice")

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})
	sched.Advance(3 * time.Second)
	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})

	// The original deadline passes without dropping the refreshed entry.
	sched.Advance(2 * time.Second)
	assert.Equal(t, []string{"bob"}, room.TypingPeers())

	sched.Advance(2 * time.Second)
	assert.Empty(t, room.TypingPeers())
}

func TestRoomStaleExpiryKeepsRefreshedTyping(t *testing.T) {
	feed := newChatStubFeed()
	sched := &lateScheduler{}
	room := NewRoom(feed, sched, "alice")
	require.NoError(t, room.Start(context.Background()))

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})
	// The refresh cancels too late: the first expiry callback is already
	// in flight when the new one is armed.
	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})

	sched.fire(0)
	assert.Equal(t, []string{"bob"}, room.TypingPeers())

	// The live expiry still cleans up.
	sched.fire(1)
	assert.Empty(t, room.TypingPeers())
}

func TestRoomMessageClearsSenderTyping(t *testing.T) {
	room, feed, _ := startRoom(t, "alice")

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})
	feed.deliver(t, realtime.EventMessage, realtime.ChatMessage{Sender: "bob", Text: "done typing"})

	assert.Empty(t, room.TypingPeers())
	assert.Len(t, room.Messages(), 1)
}

func TestRoomIgnoresOwnTypingEcho(t *testing.T) {
	room, feed, _ := startRoom(t, "alice")

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "alice", IsTyping: true})

	assert.Empty(t, room.TypingPeers())
}

func TestRoomStopCancelsTimersAndClosesFeed(t *testing.T) {
	room, feed, sched := startRoom(t, "alice")

	feed.deliver(t, realtime.EventTyping, realtime.TypingState{Sender: "bob", IsTyping: true})
	room.Stop()

	assert.True(t, feed.closed)
	assert.Empty(t, room.TypingPeers())
	assert.Zero(t, sched.Pending())
}
