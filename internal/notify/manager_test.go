package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFeed implements Feed without a network. Tests push envelopes through
// deliver to exercise the manager's routing.
type stubFeed struct {
	state      realtime.ConnState
	handlers   map[string][]func(realtime.Envelope)
	all        []func(realtime.Envelope)
	closed     bool
	connectErr error
}

func newStubFeed() *stubFeed {
	return &stubFeed{
		state:    realtime.StateDisconnected,
		handlers: make(map[string][]func(realtime.Envelope)),
	}
}

func (f *stubFeed) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		f.state = realtime.StateFailed
		return f.connectErr
	}
	f.state = realtime.StateConnected
	return nil
}

func (f *stubFeed) Bind(event string, fn func(realtime.Envelope)) {
	f.handlers[event] = append(f.handlers[event], fn)
}

func (f *stubFeed) BindAll(fn func(realtime.Envelope)) {
	f.all = append(f.all, fn)
}

func (f *stubFeed) OnStateChange(fn func(realtime.ConnState)) {}

func (f *stubFeed) State() realtime.ConnState { return f.state }

func (f *stubFeed) Close() error {
	f.closed = true
	f.state = realtime.StateDisconnected
	return nil
}

func (f *stubFeed) deliver(t *testing.T, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	env := realtime.Envelope{Channel: realtime.ChannelStudents, Event: event, Data: data}
	for _, fn := range f.all {
		fn(env)
	}
	for _, fn := range f.handlers[event] {
		fn(env)
	}
}

// recordingDesktop counts OS-level notifications.
type recordingDesktop struct {
	shown []Notification
}

func (d *recordingDesktop) Show(n Notification) error {
	d.shown = append(d.shown, n)
	return nil
}

func TestManager_RoutesChangeEvents(t *testing.T) {
	feed := newStubFeed()
	sched := scheduler.NewManual()
	desktop := &recordingDesktop{}

	m := NewManager(feed, NewToastList(sched),
		WithDesktop(desktop),
		WithPermission(PermissionGranted))
	require.NoError(t, m.Start(context.Background()))

	feed.deliver(t, realtime.EventStudentUpdate, realtime.ChangeEvent{
		Action:    realtime.ActionCreated,
		Student:   json.RawMessage(`{"id":"1","firstName":"Ada","lastName":"Lovelace"}`),
		Timestamp: "2026-01-01T00:00:00Z",
	})

	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "New Student Added", toasts[0].Title)

	require.Len(t, desktop.shown, 1)
	assert.Equal(t, "Ada Lovelace has been added to the system", desktop.shown[0].Body)
	assert.Equal(t, "connected", m.Status())
}

func TestManager_PermissionGatesDesktopOnly(t *testing.T) {
	feed := newStubFeed()
	desktop := &recordingDesktop{}

	m := NewManager(feed, NewToastList(scheduler.NewManual()),
		WithDesktop(desktop),
		WithPermission(PermissionDenied))
	require.NoError(t, m.Start(context.Background()))

	feed.deliver(t, realtime.EventStudentUpdate, realtime.ChangeEvent{
		Action:  realtime.ActionUpdated,
		Student: json.RawMessage(`{"name":"Guest"}`),
	})

	// The toast still renders; only the OS notification is skipped.
	assert.Len(t, m.Toasts(), 1)
	assert.Empty(t, desktop.shown)
}

func TestManager_IgnoresMalformedEvents(t *testing.T) {
	feed := newStubFeed()
	m := NewManager(feed, NewToastList(scheduler.NewManual()))
	require.NoError(t, m.Start(context.Background()))

	// Missing action and subject.
	feed.deliver(t, realtime.EventStudentUpdate, map[string]string{})

	assert.Empty(t, m.Toasts())
}

func TestManager_StopDetachesAndCancelsTimers(t *testing.T) {
	feed := newStubFeed()
	sched := scheduler.NewManual()
	m := NewManager(feed, NewToastList(sched))
	require.NoError(t, m.Start(context.Background()))

	feed.deliver(t, realtime.EventStudentUpdate, realtime.ChangeEvent{
		Action:  realtime.ActionCreated,
		Student: json.RawMessage(`{"name":"Guest"}`),
	})
	require.Len(t, m.Toasts(), 1)

	m.Stop()

	assert.True(t, feed.closed)
	assert.Zero(t, sched.Pending(), "no leaked toast timers after stop")
	assert.Equal(t, "disconnected", m.Status())
}
