package bot

import (
	"sync"
	"time"
)

// timerSet tracks every one-shot timer a session schedules so teardown can
// cancel them as a unit. A timer that fires after StopAll finds the set
// stopped and runs nothing; a dangling timer must never touch a dead adapter.
type timerSet struct {
	mu      sync.Mutex
	stopped bool
	pending map[*time.Timer]struct{}
}

func newTimerSet() *timerSet {
	return &timerSet{pending: make(map[*time.Timer]struct{})}
}

// After schedules fn to run once after d. No-op if the set is stopped.
func (ts *timerSet) After(d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.stopped {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		ts.mu.Lock()
		if ts.stopped {
			ts.mu.Unlock()
			return
		}
		delete(ts.pending, t)
		ts.mu.Unlock()
		fn()
	})
	ts.pending[t] = struct{}{}
}

// StopAll cancels every outstanding timer and rejects new ones.
func (ts *timerSet) StopAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.stopped = true
	for t := range ts.pending {
		t.Stop()
	}
	ts.pending = make(map[*time.Timer]struct{})
}

// Outstanding reports how many timers are pending. Used by tests and metrics.
func (ts *timerSet) Outstanding() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.pending)
}
