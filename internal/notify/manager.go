package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nfrund/rollcall/internal/realtime"
)

// Permission mirrors the desktop notification permission states a client
// session can be in. Desktop notifications are only attempted when granted;
// otherwise they are skipped with a logged warning, which is not an error.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// DesktopNotifier shows an OS-level notification. The CLI implementation
// shells out to the platform notifier; tests record calls.
type DesktopNotifier interface {
	Show(n Notification) error
}

// Feed is the slice of the realtime client the manager depends on.
// *realtime.Client satisfies it.
type Feed interface {
	Connect(ctx context.Context) error
	Bind(event string, fn func(realtime.Envelope))
	BindAll(fn func(realtime.Envelope))
	OnStateChange(fn func(realtime.ConnState))
	State() realtime.ConnState
	Close() error
}

// Manager is one session's subscription to the students channel: it
// authenticates, attaches, and routes incoming change events to the toast
// list and the desktop notifier. Its lifetime is tied to the owning view;
// Stop detaches the connection and cancels all pending toast timers.
type Manager struct {
	feed       Feed
	toasts     *ToastList
	desktop    DesktopNotifier
	permission Permission
	logger     *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDesktop sets the OS-level notifier.
func WithDesktop(d DesktopNotifier) ManagerOption {
	return func(m *Manager) { m.desktop = d }
}

// WithPermission sets the desktop notification permission state.
func WithPermission(p Permission) ManagerOption {
	return func(m *Manager) { m.permission = p }
}

// NewManager wires a manager over an attached-or-attachable feed.
func NewManager(feed Feed, toasts *ToastList, opts ...ManagerOption) *Manager {
	m := &Manager{
		feed:       feed,
		toasts:     toasts,
		permission: PermissionDefault,
		logger:     slog.Default().With("service", "notify"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start connects the feed and binds the change-event handlers. A failed
// attach is reported but leaves the manager usable as a status indicator;
// the page never blocks CRUD on notification health.
func (m *Manager) Start(ctx context.Context) error {
	m.feed.OnStateChange(func(s realtime.ConnState) {
		m.logger.Info("Connection state changed", "state", s.String())
	})

	// Diagnostic catch-all, mirrors subscribing to every event on the
	// channel for observability.
	m.feed.BindAll(func(env realtime.Envelope) {
		m.logger.Debug("Channel event", "channel", env.Channel, "event", env.Event)
	})

	m.feed.Bind(realtime.EventStudentUpdate, m.handleUpdate)

	if err := m.feed.Connect(ctx); err != nil {
		return fmt.Errorf("attach notification feed: %w", err)
	}
	return nil
}

func (m *Manager) handleUpdate(env realtime.Envelope) {
	var event realtime.ChangeEvent
	if err := json.Unmarshal(env.Data, &event); err != nil {
		m.logger.Error("Dropping malformed change event", "error", err)
		return
	}
	if event.Action == "" || len(event.Student) == 0 {
		m.logger.Error("Dropping change event with missing action or student")
		return
	}

	n := Render(event)

	// Two independent renderings: the in-app toast always happens, the
	// desktop notification is gated on permission.
	m.toasts.Add(n)

	if m.permission != PermissionGranted {
		m.logger.Warn("Skipping desktop notification, permission not granted", "permission", m.permission)
		return
	}
	if m.desktop == nil {
		return
	}
	if err := m.desktop.Show(n); err != nil {
		m.logger.Error("Failed to show desktop notification", "error", err)
	}
}

// Status returns the connection state as display text for the page's
// connection indicator.
func (m *Manager) Status() string {
	return m.feed.State().String()
}

// Toasts returns the active in-app notifications.
func (m *Manager) Toasts() []Toast {
	return m.toasts.Active()
}

// Dismiss removes a toast before its timer fires.
func (m *Manager) Dismiss(id string) {
	m.toasts.Dismiss(id)
}

// Stop detaches from the channel and cancels pending toast expiries.
func (m *Manager) Stop() {
	if err := m.feed.Close(); err != nil {
		m.logger.Error("Failed to close notification feed", "error", err)
	}
	m.toasts.Close()
}
