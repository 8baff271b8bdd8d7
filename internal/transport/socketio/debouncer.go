package socketio

import (
	"sync"
	"time"
)

// PushDebouncer collapses rapid engine events into batched broadcasts. A fast
// dial spin produces a burst of cursor moves; clients only need the last one
// per debounce window. State pushes are debounced on the same clock.
type PushDebouncer struct {
	window         time.Duration
	cursorCallback func()
	stateCallback  func()

	mu            sync.Mutex
	pendingCursor bool
	pendingState  bool
	timer         *time.Timer
	stopped       bool
}

// NewPushDebouncer creates a debouncer with the given window duration.
// cursorCallback fires for pending cursor movement, stateCallback for pending
// playback-state changes.
func NewPushDebouncer(window time.Duration, cursorCallback, stateCallback func()) *PushDebouncer {
	return &PushDebouncer{
		window:         window,
		cursorCallback: cursorCallback,
		stateCallback:  stateCallback,
	}
}

// Trigger records that the given push kind ("cursor" or "state") is pending.
// The actual broadcast callbacks are deferred until the debounce window
// elapses without further triggers.
func (d *PushDebouncer) Trigger(kind string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	switch kind {
	case "cursor":
		d.pendingCursor = true
	case "state":
		d.pendingState = true
	}

	// Reset the timer
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush fires callbacks for any pending flags and resets them.
func (d *PushDebouncer) flush() {
	d.mu.Lock()
	doCursor := d.pendingCursor
	doState := d.pendingState
	d.pendingCursor = false
	d.pendingState = false
	d.mu.Unlock()

	if doCursor && d.cursorCallback != nil {
		d.cursorCallback()
	}
	if doState && d.stateCallback != nil {
		d.stateCallback()
	}
}

// Stop prevents any further callbacks from firing.
func (d *PushDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pendingCursor = false
	d.pendingState = false
}
