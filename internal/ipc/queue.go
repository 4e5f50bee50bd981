package ipc

import (
	"sync"

	"github.com/1broseidon/tidewm/internal/wm"
)

// ActionQueue hands actions from IPC/MCP goroutines to the event loop. A
// submit appends the action and fires wake, which posts a Wake event on the
// display connection; the loop then drains the queue on its own thread.
type ActionQueue struct {
	mu      sync.Mutex
	pending []wm.Action
	wake    func()
}

// NewActionQueue creates a queue. wake is called after every submit; it
// must be safe to call from any goroutine.
func NewActionQueue(wake func()) *ActionQueue {
	if wake == nil {
		wake = func() {}
	}
	return &ActionQueue{wake: wake}
}

// Submit enqueues an action and nudges the event loop.
func (q *ActionQueue) Submit(a wm.Action) {
	q.mu.Lock()
	q.pending = append(q.pending, a)
	q.mu.Unlock()
	q.wake()
}

// Drain returns and clears all queued actions.
func (q *ActionQueue) Drain() []wm.Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}
