package autosave

import (
	"sync"
	"time"
)

// delayedTask is a cancellable single-slot timer: scheduling while a
// task is pending replaces it, so at most one callback is ever armed.
// The debounce invariant ("edits within the window coalesce into one
// save") is this type's contract, not a convention at call sites.
type delayedTask struct {
	mu    sync.Mutex
	timer *time.Timer
}

// Schedule arms fn to run after d, replacing any pending task.
func (t *delayedTask) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(d, fn)
}

// Cancel stops the pending task, if any, and reports whether one was
// pending. A task already running is not interrupted.
func (t *delayedTask) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return false
	}
	stopped := t.timer.Stop()
	t.timer = nil
	return stopped
}
