package reconcile

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Draft is the ephemeral working state of an arbitrage operation being
// edited. It is not part of the ledger until committed through the closure
// service.
type Draft struct {
	Mode   string    `json:"mode"`
	Odds   []float64 `json:"odds"`
	Stakes []float64 `json:"stakes,omitempty"` // surebet manual stakes
	Total  float64   `json:"total"`
}

// Autosaver coalesces rapid edits to a draft into a single delayed write.
// Every Edit replaces the pending draft and resets the timer; the draft is
// flushed once the user stops typing for the configured delay, or when the
// owner flushes explicitly on teardown. Flush is idempotent, so a timer
// firing after Close is harmless.
type Autosaver struct {
	mu      sync.Mutex
	delay   time.Duration
	save    func(Draft) error
	logger  *zap.Logger
	timer   *time.Timer
	pending Draft
	dirty   bool
	closed  bool
}

// NewAutosaver creates an autosaver writing through save after delay of
// inactivity.
func NewAutosaver(delay time.Duration, save func(Draft) error, logger *zap.Logger) *Autosaver {
	return &Autosaver{delay: delay, save: save, logger: logger.Named("autosave")}
}

// Edit records the latest draft state and restarts the inactivity timer.
func (a *Autosaver) Edit(d Draft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.pending = d
	a.dirty = true

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() {
		if err := a.Flush(); err != nil {
			a.logger.Warn("Autosave flush failed", zap.Error(err))
		}
	})
}

// Flush writes the pending draft if there is one. Calling it with nothing
// pending is a no-op.
func (a *Autosaver) Flush() error {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	draft := a.pending
	a.dirty = false
	a.mu.Unlock()

	return a.save(draft)
}

// Close stops the timer and flushes any pending draft. Further edits are
// discarded.
func (a *Autosaver) Close() error {
	a.mu.Lock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	return a.Flush()
}
