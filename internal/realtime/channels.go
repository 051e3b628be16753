package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nfrund/rollcall/internal/metrics"
	"github.com/nfrund/rollcall/internal/pubsub"
)

// Channels is the server-side channel abstraction. It wraps the pub/sub bus
// with the envelope encoding, per-channel configuration and metrics. All
// delivery is best-effort: no history, no ordering across channels, no
// sequence numbers.
type Channels struct {
	bus pubsub.Bus
}

type channelConfig struct {
	// echoSuppressed channels never deliver a client-published event back to
	// its originating client. Server-originated events carry no client ID and
	// are unaffected.
	echoSuppressed bool
}

// Both fixed channels suppress echo. It only matters on chat-room in
// practice: student-update events are server-published and have no actor.
var channelConfigs = map[string]channelConfig{
	ChannelStudents: {echoSuppressed: true},
	ChannelChatRoom: {echoSuppressed: true},
}

// KnownChannel reports whether name is one of the fixed broadcast channels.
func KnownChannel(name string) bool {
	_, ok := channelConfigs[name]
	return ok
}

// EchoSuppressed reports the echo configuration for a channel.
func EchoSuppressed(name string) bool {
	return channelConfigs[name].echoSuppressed
}

// NewChannels creates the channel layer on top of a message bus.
func NewChannels(bus pubsub.Bus) *Channels {
	return &Channels{bus: bus}
}

// Publish broadcasts a named event to all current subscribers of a channel.
// origin is the publishing client's identifier, or empty for the server.
// Errors are returned so the caller can decide the policy; every caller in
// this codebase logs and moves on, never failing the triggering operation.
func (c *Channels) Publish(ctx context.Context, channel, event string, payload any, origin string) error {
	if !KnownChannel(channel) {
		return fmt.Errorf("publish to unknown channel %q", channel)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	env := Envelope{
		Channel:  channel,
		Event:    event,
		ClientID: origin,
		Data:     data,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := pubsub.Message{
		Topic:    channel,
		ClientID: origin,
		Payload:  raw,
		Metadata: map[string]string{"event": event},
	}
	if err := c.bus.Publish(ctx, msg); err != nil {
		metrics.PublishFailures.WithLabelValues(channel).Inc()
		return fmt.Errorf("publish %s/%s: %w", channel, event, err)
	}

	metrics.EventsPublished.WithLabelValues(channel, event).Inc()
	return nil
}

// Subscribe registers a handler for every envelope broadcast on a channel.
// The subscription lives until ctx is canceled.
func (c *Channels) Subscribe(ctx context.Context, channel string, handler func(Envelope)) error {
	if !KnownChannel(channel) {
		return fmt.Errorf("subscribe to unknown channel %q", channel)
	}

	return c.bus.Subscribe(ctx, channel, func(ctx context.Context, msg pubsub.Message) error {
		var env Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			slog.Error("Dropping malformed envelope", "channel", channel, "error", err)
			return nil
		}
		handler(env)
		return nil
	})
}
