package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/rollcall/internal/scheduler"
)

// ToastTTL is how long a toast stays visible unless dismissed first.
const ToastTTL = 5 * time.Second

// Toast is one entry in the in-app notification stack.
type Toast struct {
	ID    string
	Title string
	Body  string
	Icon  string
	// Link is the profile page the toast points at, may be empty.
	Link string
}

// ToastList is an ordered stack of in-app notifications. Each toast expires
// independently on its own timer; Close cancels all pending expiries so a
// detaching view leaks nothing.
type ToastList struct {
	mu     sync.Mutex
	sched  scheduler.Scheduler
	ttl    time.Duration
	toasts []Toast
	timers map[string]scheduler.Task
	closed bool
}

// NewToastList creates an empty list with the standard TTL.
func NewToastList(sched scheduler.Scheduler) *ToastList {
	return &ToastList{
		sched:  sched,
		ttl:    ToastTTL,
		timers: make(map[string]scheduler.Task),
	}
}

// Add appends a toast and schedules its expiry. Returns the toast ID.
func (tl *ToastList) Add(n Notification) string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.closed {
		return ""
	}

	id := uuid.NewString()
	tl.toasts = append(tl.toasts, Toast{
		ID:    id,
		Title: n.Title,
		Body:  n.Body,
		Icon:  n.Icon,
		Link:  n.DeepLink,
	})
	tl.timers[id] = tl.sched.AfterFunc(tl.ttl, func() {
		tl.Dismiss(id)
	})
	return id
}

// Dismiss removes a toast, either from its expiry timer or an explicit
// user action. Unknown IDs are ignored.
func (tl *ToastList) Dismiss(id string) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if task, ok := tl.timers[id]; ok {
		task.Cancel()
		delete(tl.timers, id)
	}
	for i, toast := range tl.toasts {
		if toast.ID == id {
			tl.toasts = append(tl.toasts[:i], tl.toasts[i+1:]...)
			break
		}
	}
}

// Active returns the current toasts in insertion order.
func (tl *ToastList) Active() []Toast {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	result := make([]Toast, len(tl.toasts))
	copy(result, tl.toasts)
	return result
}

// Close cancels every pending expiry timer and empties the list.
func (tl *ToastList) Close() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.closed = true
	for id, task := range tl.timers {
		task.Cancel()
		delete(tl.timers, id)
	}
	tl.toasts = nil
}
