package session

import (
	"fmt"
	"sync"
	"time"
)

// Timer tracks how long the workout screen has been active. It only
// advances while running; Pause and Resume follow the screen's focus.
// Timer is safe for concurrent use.
type Timer struct {
	mu        sync.Mutex
	now       func() time.Time
	banked    time.Duration
	resumedAt time.Time
	running   bool
}

// NewTimer returns a stopped timer. A nil now uses time.Now.
func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Resume starts or continues counting. Calling it while running is a no-op.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.resumedAt = t.now()
}

// Pause stops counting and keeps the elapsed time.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.banked += t.now().Sub(t.resumedAt)
	t.running = false
}

// Reset stops the timer and zeroes it.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.banked = 0
	t.running = false
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns whole seconds counted so far.
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.banked
	if t.running {
		d += t.now().Sub(t.resumedAt)
	}
	return int(d / time.Second)
}

// FormatElapsed renders seconds as M:SS.
func FormatElapsed(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
