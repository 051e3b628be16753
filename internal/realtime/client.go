package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/coder/websocket"
)

// ConnState tracks a client connection through its lifecycle. Callers must
// not assume delivery while the state is anything but Connected.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateSuspended
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSuspended:
		return "suspended"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TokenSource provides a fresh credential for attaching. Typically backed by
// the token endpoint; tests inject an Issuer directly.
type TokenSource func(ctx context.Context) (*Credential, error)

// IssuerTokenSource adapts a local Issuer into a TokenSource.
func IssuerTokenSource(issuer *Issuer, purpose Purpose) TokenSource {
	return func(ctx context.Context) (*Credential, error) {
		return issuer.Issue(purpose)
	}
}

// transport is the minimal connection surface the client needs, so tests can
// substitute an in-memory pipe for a real websocket.
type transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Dialer opens a transport to the given websocket URL.
type Dialer func(ctx context.Context, wsURL string) (transport, error)

type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	return data, err
}

func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, data)
}

func (t *wsTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "Client closed")
}

func defaultDialer(ctx context.Context, wsURL string) (transport, error) {
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

// Client is one attached subscriber on one channel. It is an explicitly
// constructed, explicitly owned value: whoever creates it is responsible for
// calling Close when the owning view goes away. There is no process-wide
// connection singleton.
type Client struct {
	baseURL string
	channel string
	tokens  TokenSource
	dial    Dialer

	mu          sync.Mutex
	state       ConnState
	stateFns    []func(ConnState)
	handlers    map[string][]func(Envelope)
	anyHandlers []func(Envelope)
	tr          transport
	clientID    string
	closed      bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDialer overrides the websocket dialer. Used by tests.
func WithDialer(d Dialer) ClientOption {
	return func(c *Client) { c.dial = d }
}

// NewClient creates a detached client for one channel. baseURL is the
// server's websocket endpoint, e.g. "ws://localhost:8080/ws".
func NewClient(baseURL, channel string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		channel:  channel,
		tokens:   tokens,
		dial:     defaultDialer,
		state:    StateDisconnected,
		handlers: make(map[string][]func(Envelope)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ClientID returns the identifier from the credential used to attach, or
// empty before the first successful attach.
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// OnStateChange registers a callback for connection state transitions.
func (c *Client) OnStateChange(fn func(ConnState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateFns = append(c.stateFns, fn)
}

// Bind registers a handler for a named event on this channel.
func (c *Client) Bind(event string, fn func(Envelope)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], fn)
}

// BindAll registers a catch-all handler that sees every envelope regardless
// of event name. Intended for diagnostics.
func (c *Client) BindAll(fn func(Envelope)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anyHandlers = append(c.anyHandlers, fn)
}

func (c *Client) setState(s ConnState) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	fns := make([]func(ConnState), len(c.stateFns))
	copy(fns, c.stateFns)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Connect authenticates, attaches to the channel and starts dispatching
// incoming events. On failure the state is Failed and an error is returned;
// the client does not retry on its own.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("attach to %s: client closed", c.channel)
	}
	c.mu.Unlock()

	c.setState(StateConnecting)

	cred, err := c.tokens(ctx)
	if err != nil {
		c.setState(StateFailed)
		return fmt.Errorf("acquire credential: %w", err)
	}

	wsURL := fmt.Sprintf("%s?channel=%s&token=%s",
		c.baseURL, url.QueryEscape(c.channel), url.QueryEscape(cred.Token))
	tr, err := c.dial(ctx, wsURL)
	if err != nil {
		c.setState(StateFailed)
		return fmt.Errorf("attach to %s: %w", c.channel, err)
	}

	c.mu.Lock()
	c.tr = tr
	c.clientID = cred.ClientID
	c.mu.Unlock()

	c.setState(StateConnected)
	go c.readLoop(tr)
	return nil
}

func (c *Client) readLoop(tr transport) {
	for {
		raw, err := tr.Read(context.Background())
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				c.setState(StateDisconnected)
			} else {
				// The server went away mid-session. No reconnect policy of
				// our own; the owner decides whether to build a new client.
				slog.Warn("Realtime connection lost", "channel", c.channel, "error", err)
				c.setState(StateSuspended)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			slog.Warn("Dropping malformed envelope", "channel", c.channel, "error", err)
			continue
		}
		c.dispatch(env)
	}
}

// dispatch routes one envelope to the bound handlers. Self-originated
// events are filtered here as well, so echo suppression holds even if the
// server-side filter is bypassed.
func (c *Client) dispatch(env Envelope) {
	c.mu.Lock()
	if EchoSuppressed(c.channel) && env.ClientID != "" && env.ClientID == c.clientID {
		c.mu.Unlock()
		return
	}
	named := make([]func(Envelope), len(c.handlers[env.Event]))
	copy(named, c.handlers[env.Event])
	all := make([]func(Envelope), len(c.anyHandlers))
	copy(all, c.anyHandlers)
	c.mu.Unlock()

	for _, fn := range all {
		fn(env)
	}
	for _, fn := range named {
		fn(env)
	}
}

// Publish sends a named event to the channel. The bridge stamps the
// authenticated client identifier on the relayed envelope.
func (c *Client) Publish(ctx context.Context, event string, payload any) error {
	c.mu.Lock()
	tr := c.tr
	c.mu.Unlock()
	if tr == nil {
		return fmt.Errorf("publish %s: not attached", event)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	raw, err := json.Marshal(Envelope{Channel: c.channel, Event: event, Data: data})
	if err != nil {
		return err
	}
	return tr.Write(ctx, raw)
}

// Close detaches from the channel. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	tr := c.tr
	c.mu.Unlock()

	if tr != nil {
		return tr.Close()
	}
	c.setState(StateDisconnected)
	return nil
}
