package events

import (
	"sync"

	models "writersuite/internal/domain/models/workspace"
)

// DefaultBuffer is the channel capacity used when none is given
const DefaultBuffer = 256

// Emitter fans mutation events from a store into a single buffered channel.
// Emit never blocks. When the buffer is full the event is dropped and an
// OpResync event takes the slot kept free for it, so the consumer learns
// that it missed something. At most one resync is queued at a time, and it
// is always behind every event it stands for.
type Emitter struct {
	mu      sync.Mutex
	ch      chan models.Event
	closed  bool
	dropped int
	// resyncQueued is set while a resync sits in ch with no event accepted after it
	resyncQueued bool
}

// NewEmitter creates an emitter that buffers up to buffer events
func NewEmitter(buffer int) *Emitter {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	// One extra slot for the resync marker
	return &Emitter{ch: make(chan models.Event, buffer+1)}
}

// Emit publishes an event. Reports false if it was dropped.
func (e *Emitter) Emit(ev models.Event) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	if len(e.ch) < cap(e.ch)-1 {
		e.ch <- ev
		e.resyncQueued = false
		return true
	}
	e.dropped++
	e.queueResyncLocked()
	return false
}

// Resync queues an OpResync event unless one is already pending. Stores call
// it when they know changes went unreported, such as after a reconnect.
func (e *Emitter) Resync() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.queueResyncLocked()
}

// Only this type sends on ch and always under mu, so a send with
// len < cap never blocks.
func (e *Emitter) queueResyncLocked() {
	if e.resyncQueued || len(e.ch) == cap(e.ch) {
		return
	}
	e.ch <- models.Event{Op: models.OpResync}
	e.resyncQueued = true
}

// Events returns the receive side of the channel
func (e *Emitter) Events() <-chan models.Event {
	return e.ch
}

// Dropped returns how many events were discarded because the buffer was full
func (e *Emitter) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Close closes the channel. Later Emit calls are no-ops.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
