// Package scheduler provides a small cancellable-timer abstraction so that
// components with debounce or expiry behavior (typing indicators, toast
// lifetimes) schedule work through one interface instead of ad hoc
// time.AfterFunc calls. The manual implementation lets tests drive time
// deterministically.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Task is a scheduled callback that can be stopped before it fires.
type Task interface {
	// Cancel stops the task. It reports whether the cancellation prevented
	// the callback from running.
	Cancel() bool
}

// Scheduler schedules a callback to run after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// Real schedules on the wall clock via time.AfterFunc.
type Real struct{}

// NewReal returns the wall-clock scheduler.
func NewReal() *Real {
	return &Real{}
}

func (*Real) AfterFunc(d time.Duration, fn func()) Task {
	return realTask{t: time.AfterFunc(d, fn)}
}

type realTask struct {
	t *time.Timer
}

func (rt realTask) Cancel() bool {
	return rt.t.Stop()
}

// Manual is a deterministic scheduler for tests. Time only moves when
// Advance is called; due callbacks run synchronously on the advancing
// goroutine, in deadline order.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	next  int
	tasks map[int]*manualTask
}

// NewManual returns a scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{tasks: make(map[int]*manualTask)}
}

type manualTask struct {
	id       int
	deadline time.Duration
	fn       func()
	owner    *Manual
}

func (mt *manualTask) Cancel() bool {
	mt.owner.mu.Lock()
	defer mt.owner.mu.Unlock()
	if _, ok := mt.owner.tasks[mt.id]; !ok {
		return false
	}
	delete(mt.owner.tasks, mt.id)
	return true
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	mt := &manualTask{id: m.next, deadline: m.now + d, fn: fn, owner: m}
	m.tasks[mt.id] = mt
	return mt
}

// Advance moves the clock forward and fires every task whose deadline has
// passed. Callbacks run outside the lock so they may schedule new tasks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	for id, mt := range m.tasks {
		if mt.deadline <= m.now {
			due = append(due, mt)
			delete(m.tasks, id)
		}
	}
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].deadline < due[j].deadline })
	for _, mt := range due {
		mt.fn()
	}
}

// Pending reports how many tasks are still scheduled. Useful for asserting
// that components cancel their timers on shutdown.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
