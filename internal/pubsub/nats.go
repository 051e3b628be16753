package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		Name:          "rollcall",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NATSBridge implements Bus over a NATS connection, for deployments where
// several server instances must fan events out to each other's websocket
// clients. Reconnection is delegated entirely to the NATS client; the
// realtime layer never orchestrates retries itself.
type NATSBridge struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs []*nats.Subscription
}

// natsEnvelope carries Message fields that NATS subjects cannot.
type natsEnvelope struct {
	ClientID string            `json:"clientId,omitempty"`
	Payload  json.RawMessage   `json:"payload"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewNATSBridge connects to NATS with the given config and returns a ready bridge.
// It returns an error if the initial connection fails.
func NewNATSBridge(config NATSConfig) (*NATSBridge, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &NATSBridge{conn: conn}, nil
}

// Publish implements the Publisher interface.
func (nb *NATSBridge) Publish(ctx context.Context, msg Message) error {
	env := natsEnvelope{
		ClientID: msg.ClientID,
		Payload:  msg.Payload,
		Metadata: msg.Metadata,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("nats marshal: %w", err)
	}
	return nb.conn.Publish(msg.Topic, data)
}

// Subscribe implements the Subscriber interface.
func (nb *NATSBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	sub, err := nb.conn.Subscribe(topic, func(m *nats.Msg) {
		var env natsEnvelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			slog.Error("Failed to decode NATS message", "topic", topic, "error", err)
			return
		}
		msg := Message{
			Topic:    topic,
			ClientID: env.ClientID,
			Payload:  env.Payload,
			Metadata: env.Metadata,
		}
		if err := handler(ctx, msg); err != nil {
			slog.Error("Failed to handle message", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", topic, err)
	}

	nb.mu.Lock()
	nb.subs = append(nb.subs, sub)
	nb.mu.Unlock()

	// Drain the subscription when the caller's context ends.
	go func() {
		<-ctx.Done()
		_ = sub.Drain()
	}()

	return nil
}

// Close drains all subscriptions and closes the connection.
func (nb *NATSBridge) Close() error {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	for _, sub := range nb.subs {
		_ = sub.Drain()
	}
	nb.conn.Close()
	return nil
}
