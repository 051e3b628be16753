// Package chat implements the chat-room channel: an ordered local message
// list, a typing-indicator set, and the sender-side debounce that drives
// typing events. Nothing here is persisted; state lives only as long as the
// owning session.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/scheduler"
)

// typingExpiry is the receiver-side safety net: a peer's typing entry is
// dropped this long after its last isTyping=true, even if the final
// isTyping=false event was lost in transit. Twice the sender's debounce
// window, so a well-behaved sender always clears itself first.
const typingExpiry = 4 * time.Second

// Feed is the slice of the realtime client a Room depends on.
// *realtime.Client satisfies it.
type Feed interface {
	Connect(ctx context.Context) error
	Bind(event string, fn func(realtime.Envelope))
	OnStateChange(fn func(realtime.ConnState))
	State() realtime.ConnState
	Publish(ctx context.Context, event string, payload any) error
	Close() error
}

// Room is one session's view of the chat-room channel. Messages append in
// arrival order; the typing set tracks which peers are currently typing.
type Room struct {
	feed   Feed
	sched  scheduler.Scheduler
	sender string
	logger *slog.Logger

	mu       sync.Mutex
	messages []realtime.ChatMessage
	typing   map[string]scheduler.Task // peer -> receiver-side expiry
	emitter  *TypingEmitter
	stopped  bool
}

// NewRoom creates a detached room for the given display name.
func NewRoom(feed Feed, sched scheduler.Scheduler, sender string) *Room {
	r := &Room{
		feed:   feed,
		sched:  sched,
		sender: sender,
		logger: slog.Default().With("service", "chat", "sender", sender),
		typing: make(map[string]scheduler.Task),
	}
	r.emitter = NewTypingEmitter(feed, sched, sender)
	return r
}

// Start binds the event handlers and attaches to the channel.
func (r *Room) Start(ctx context.Context) error {
	r.feed.OnStateChange(func(s realtime.ConnState) {
		r.logger.Info("Chat connection state changed", "state", s.String())
	})

	r.feed.Bind(realtime.EventMessage, r.handleMessage)
	r.feed.Bind(realtime.EventTyping, r.handleTyping)

	if err := r.feed.Connect(ctx); err != nil {
		return fmt.Errorf("attach chat room: %w", err)
	}
	return nil
}

// Send publishes a chat message. The local append is the commit and always
// succeeds; the publish is a separate best-effort stage whose failure is
// logged without touching the local list. Echo suppression means the sender
// never sees its own message come back, so the local append is the only
// copy it has.
func (r *Room) Send(ctx context.Context, text string) {
	msg := realtime.ChatMessage{
		Sender:    r.sender,
		Text:      text,
		Timestamp: domain.Now(),
	}

	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	// Sending a message ends the typing burst.
	r.emitter.Blur(ctx)

	if err := r.feed.Publish(ctx, realtime.EventMessage, msg); err != nil {
		r.logger.Error("Failed to publish chat message", "error", err)
	}
}

// KeyPress feeds the sender-side typing debounce. Call on every keystroke.
func (r *Room) KeyPress(ctx context.Context) {
	r.emitter.KeyPress(ctx)
}

// Blur signals that the input lost focus: the typing indicator clears
// immediately instead of waiting out the debounce window.
func (r *Room) Blur(ctx context.Context) {
	r.emitter.Blur(ctx)
}

func (r *Room) handleMessage(env realtime.Envelope) {
	var msg realtime.ChatMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		r.logger.Warn("Dropping malformed chat message", "error", err)
		return
	}

	r.mu.Lock()
	r.messages = append(r.messages, msg)
	// A message from a peer supersedes their typing indicator.
	r.clearTypingLocked(msg.Sender)
	r.mu.Unlock()
}

func (r *Room) handleTyping(env realtime.Envelope) {
	var state realtime.TypingState
	if err := json.Unmarshal(env.Data, &state); err != nil {
		r.logger.Warn("Dropping malformed typing event", "error", err)
		return
	}
	// Belt and braces: echo suppression should already keep our own
	// indicator out, but a sender never shows itself as typing.
	if state.Sender == r.sender {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	if !state.IsTyping {
		r.clearTypingLocked(state.Sender)
		return
	}

	// Set semantics: re-adding an existing peer only refreshes its expiry.
	if task, ok := r.typing[state.Sender]; ok {
		task.Cancel()
	}
	sender := state.Sender
	var task scheduler.Task
	task = r.sched.AfterFunc(typingExpiry, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// A refresh may have replaced this task while its callback was
		// already in flight. Only the current task may clear the entry.
		if r.typing[sender] == task {
			delete(r.typing, sender)
		}
	})
	r.typing[sender] = task
}

// clearTypingLocked removes a peer from the typing set. Caller holds mu.
func (r *Room) clearTypingLocked(sender string) {
	if task, ok := r.typing[sender]; ok {
		task.Cancel()
		delete(r.typing, sender)
	}
}

// Messages returns the message list in arrival order.
func (r *Room) Messages() []realtime.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]realtime.ChatMessage, len(r.messages))
	copy(result, r.messages)
	return result
}

// TypingPeers returns the peers currently typing, sorted for stable display.
func (r *Room) TypingPeers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]string, 0, len(r.typing))
	for sender := range r.typing {
		result = append(result, sender)
	}
	sort.Strings(result)
	return result
}

// Status returns the connection state as display text.
func (r *Room) Status() string {
	return r.feed.State().String()
}

// Stop detaches from the channel and cancels every pending timer, both the
// debounce and the receiver-side expiries.
func (r *Room) Stop() {
	r.mu.Lock()
	r.stopped = true
	for sender, task := range r.typing {
		task.Cancel()
		delete(r.typing, sender)
	}
	r.mu.Unlock()

	r.emitter.Stop()
	if err := r.feed.Close(); err != nil {
		r.logger.Error("Failed to close chat feed", "error", err)
	}
}
