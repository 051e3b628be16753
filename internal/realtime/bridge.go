package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/rollcall/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Outbound buffer per client. A client that cannot drain this is
	// considered dead and is dropped.
	sendBuffer = 256
)

// wsClient is a single attached websocket connection.
type wsClient struct {
	id      string
	channel string
	claims  *Claims
	conn    *websocket.Conn
	send    chan []byte
}

// Bridge accepts websocket attachments and routes envelopes between
// connected clients and the channel layer. One Bridge serves all channels;
// each connection attaches to exactly one.
type Bridge struct {
	channels *Channels
	issuer   *Issuer

	mu      sync.RWMutex
	clients map[string]map[*wsClient]bool // channel -> attached clients
}

// NewBridge creates a bridge over the given channel layer.
func NewBridge(channels *Channels, issuer *Issuer) *Bridge {
	b := &Bridge{
		channels: channels,
		issuer:   issuer,
		clients:  make(map[string]map[*wsClient]bool),
	}
	return b
}

// Start subscribes the bridge to every known channel so bus events fan out
// to attached clients. It must be called once before serving connections.
func (b *Bridge) Start(ctx context.Context) error {
	for name := range channelConfigs {
		name := name
		if err := b.channels.Subscribe(ctx, name, func(env Envelope) {
			b.fanOut(name, env)
		}); err != nil {
			return err
		}
	}
	return nil
}

// fanOut delivers one envelope to every client attached to the channel,
// skipping the originating client on echo-suppressed channels. Sends are
// non-blocking: a client with a full buffer is dropped rather than allowed
// to stall the broadcast.
func (b *Bridge) fanOut(channel string, env Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		slog.Error("Failed to marshal envelope for fan-out", "channel", channel, "error", err)
		return
	}

	suppress := EchoSuppressed(channel)

	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients[channel] {
		if suppress && env.ClientID != "" && env.ClientID == client.id {
			continue
		}
		select {
		case client.send <- raw:
			metrics.EventsDelivered.WithLabelValues(channel).Inc()
		default:
			b.dropLocked(client)
			slog.Warn("Client send buffer full, connection dropped", "clientID", client.id, "channel", channel)
		}
	}
}

func (b *Bridge) addClient(c *wsClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[c.channel] == nil {
		b.clients[c.channel] = make(map[*wsClient]bool)
	}
	b.clients[c.channel][c] = true
	metrics.ConnectedClients.WithLabelValues(c.channel).Inc()
	slog.Info("Client attached", "clientID", c.id, "channel", c.channel, "attached", len(b.clients[c.channel]))
}

func (b *Bridge) removeClient(c *wsClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[c.channel][c] {
		b.dropLocked(c)
		slog.Info("Client detached", "clientID", c.id, "channel", c.channel, "attached", len(b.clients[c.channel]))
	}
}

// dropLocked removes a client and closes its send channel. Caller holds mu.
func (b *Bridge) dropLocked(c *wsClient) {
	delete(b.clients[c.channel], c)
	close(c.send)
	metrics.ConnectedClients.WithLabelValues(c.channel).Dec()
}

// AttachedCount returns the number of clients attached to a channel.
func (b *Bridge) AttachedCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[channel])
}

// Handler returns the echo handler for GET /ws?channel=<name>&token=<jwt>.
// The credential must grant subscribe on the requested channel.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		channel := c.QueryParam("channel")
		if !KnownChannel(channel) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown channel"})
		}

		claims, err := b.issuer.Verify(c.QueryParam("token"))
		if err != nil {
			slog.Warn("Rejecting websocket attach", "channel", channel, "error", err)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credential"})
		}
		if !claims.Can(channel, CapSubscribe) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "credential does not grant subscribe on " + channel})
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			// The credential is the access control here; cross-origin pages
			// holding a valid token are allowed to attach.
			InsecureSkipVerify: true,
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := &wsClient{
			id:      claims.ClientID,
			channel: channel,
			claims:  claims,
			conn:    conn,
			send:    make(chan []byte, sendBuffer),
		}
		b.addClient(client)

		go b.writePump(client)
		go b.readPump(client)

		return nil
	}
}

// readPump reads envelopes from the connection and publishes them to the
// channel layer. It owns the connection teardown.
func (b *Bridge) readPump(client *wsClient) {
	defer func() {
		b.removeClient(client)
		client.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, raw, err := client.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "clientID", client.id)
			} else if err != io.EOF {
				slog.Error("WebSocket read error", "clientID", client.id, "error", err)
			}
			return
		}
		b.handleIncoming(client, raw)
	}
}

// handleIncoming validates and republishes a client-sent envelope. The
// authenticated identity always wins over whatever the client wrote in the
// clientId field.
func (b *Bridge) handleIncoming(client *wsClient, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		slog.Warn("Dropping malformed client envelope", "clientID", client.id, "error", err)
		return
	}
	if !client.claims.Can(client.channel, CapPublish) {
		slog.Warn("Dropping publish without capability", "clientID", client.id, "channel", client.channel)
		return
	}

	err := b.channels.Publish(context.Background(), client.channel, env.Event, json.RawMessage(env.Data), client.id)
	if err != nil {
		// Best-effort: the client is not told about a failed relay.
		slog.Error("Failed to relay client publish", "clientID", client.id, "channel", client.channel, "error", err)
	}
}

// writePump sends outbound envelopes to the connection.
func (b *Bridge) writePump(client *wsClient) {
	defer client.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")

	for raw := range client.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := client.conn.Write(ctx, websocket.MessageText, raw)
		cancel()
		if err != nil {
			slog.Error("WebSocket write error", "clientID", client.id, "error", err)
			return
		}
	}
}
