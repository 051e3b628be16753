package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/scheduler"
)

// TypingWindow is the sender-side debounce: after the last keystroke the
// indicator stays up this long before isTyping=false is emitted.
const TypingWindow = 2000 * time.Millisecond

// typingPublisher is the one method of the feed the emitter needs.
type typingPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// TypingEmitter debounces keystrokes into typing events. The first keystroke
// of a burst emits isTyping=true; every keystroke restarts the window; when
// the window elapses with no further input a single isTyping=false follows.
// Repeated keystrokes inside the window emit nothing.
type TypingEmitter struct {
	feed   typingPublisher
	sched  scheduler.Scheduler
	sender string
	logger *slog.Logger

	mu     sync.Mutex
	timer  scheduler.Task // nil when no burst is active
	gen    uint64         // identity of the armed window
	closed bool
}

func NewTypingEmitter(feed typingPublisher, sched scheduler.Scheduler, sender string) *TypingEmitter {
	return &TypingEmitter{
		feed:   feed,
		sched:  sched,
		sender: sender,
		logger: slog.Default().With("service", "typing", "sender", sender),
	}
}

// KeyPress registers one keystroke.
func (e *TypingEmitter) KeyPress(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	first := e.timer == nil
	if e.timer != nil {
		e.timer.Cancel()
	}
	e.gen++
	gen := e.gen
	e.timer = e.sched.AfterFunc(TypingWindow, func() { e.windowElapsed(gen) })
	e.mu.Unlock()

	if first {
		e.emit(ctx, true)
	}
}

// Blur ends the burst immediately: the pending window is cancelled and, if a
// burst was active, isTyping=false goes out now.
func (e *TypingEmitter) Blur(ctx context.Context) {
	e.mu.Lock()
	active := e.timer != nil
	if active {
		e.timer.Cancel()
		e.timer = nil
	}
	e.mu.Unlock()

	if active {
		e.emit(ctx, false)
	}
}

// windowElapsed runs when an armed window fires. Cancel cannot stop a
// callback that has already started, so a keystroke may replace the window
// while the old callback is still in flight; the generation check makes
// that stale fire a no-op instead of ending the fresh burst.
func (e *TypingEmitter) windowElapsed(gen uint64) {
	e.mu.Lock()
	if e.closed || e.timer == nil || gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.mu.Unlock()

	e.emit(context.Background(), false)
}

func (e *TypingEmitter) emit(ctx context.Context, typing bool) {
	state := realtime.TypingState{Sender: e.sender, IsTyping: typing}
	if err := e.feed.Publish(ctx, realtime.EventTyping, state); err != nil {
		e.logger.Error("Failed to publish typing state", "error", err, "isTyping", typing)
	}
}

// Stop cancels any pending window without emitting. Used on teardown, where
// the peer-side expiry cleans up for us.
func (e *TypingEmitter) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.timer != nil {
		e.timer.Cancel()
		e.timer = nil
	}
}
