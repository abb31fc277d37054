package refresh

import (
	"sync"

	mstream "github.com/haowjy/meridian-stream-go"
)

// latestBuffer keeps only the most recent stream event. A stale event
// supersedes every earlier one, so a reconnecting client needs at most the last.
type latestBuffer struct {
	mu    sync.RWMutex
	event *mstream.Event
}

func newLatestBuffer() *latestBuffer {
	return &latestBuffer{}
}

func (b *latestBuffer) Add(event mstream.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.event = &event
}

func (b *latestBuffer) GetAll() []mstream.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.event == nil {
		return nil
	}
	return []mstream.Event{*b.event}
}

// GetSince returns the latest event unless lastEventID already names it
func (b *latestBuffer) GetSince(lastEventID string) []mstream.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if lastEventID == "" || b.event == nil || b.event.ID == lastEventID {
		return nil
	}
	return []mstream.Event{*b.event}
}

func (b *latestBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.event = nil
}

func (b *latestBuffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.event == nil {
		return 0
	}
	return 1
}

func (b *latestBuffer) Snapshot() []mstream.Event {
	return b.GetAll()
}
