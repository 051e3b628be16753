package notify

import (
	"testing"
	"time"

	"github.com/nfrund/rollcall/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastList_AutoExpiry(t *testing.T) {
	sched := scheduler.NewManual()
	tl := NewToastList(sched)

	tl.Add(Notification{Title: "New Student Added", Body: "Ada Lovelace has been added to the system"})
	require.Len(t, tl.Active(), 1)

	// Just before the TTL the toast is still visible.
	sched.Advance(ToastTTL - time.Millisecond)
	assert.Len(t, tl.Active(), 1)

	// At t=5001ms it is gone.
	sched.Advance(2 * time.Millisecond)
	assert.Empty(t, tl.Active())
	assert.Zero(t, sched.Pending())
}

func TestToastList_IndependentTimers(t *testing.T) {
	sched := scheduler.NewManual()
	tl := NewToastList(sched)

	tl.Add(Notification{Title: "first"})
	sched.Advance(3 * time.Second)
	tl.Add(Notification{Title: "second"})

	// Toasts stack in insertion order.
	active := tl.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "first", active[0].Title)
	assert.Equal(t, "second", active[1].Title)

	// The first expires on its own timer, the second stays.
	sched.Advance(2*time.Second + time.Millisecond)
	active = tl.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Title)
}

func TestToastList_ManualDismiss(t *testing.T) {
	sched := scheduler.NewManual()
	tl := NewToastList(sched)

	id := tl.Add(Notification{Title: "dismiss me"})
	tl.Dismiss(id)

	assert.Empty(t, tl.Active())
	assert.Zero(t, sched.Pending(), "dismissal cancels the expiry timer")
}

func TestToastList_CloseCancelsTimers(t *testing.T) {
	sched := scheduler.NewManual()
	tl := NewToastList(sched)

	tl.Add(Notification{Title: "one"})
	tl.Add(Notification{Title: "two"})
	tl.Close()

	assert.Empty(t, tl.Active())
	assert.Zero(t, sched.Pending())

	// Adds after close are ignored.
	tl.Add(Notification{Title: "late"})
	assert.Empty(t, tl.Active())
}
