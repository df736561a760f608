// Package buffer implements the in-memory ingest queue that sits between
// event producers and the flush scheduler.
package buffer

import (
	"sync"

	"github.com/skalddb/skald/pkg/types"
)

// Buffer is an ordered, append-only queue of events awaiting flush.
// Enqueue and Patch are safe to call from any goroutine and never block
// on I/O; the buffer is the only mutable stage in an event's life.
type Buffer struct {
	mu        sync.Mutex
	events    []types.Event
	maxEvents int
	kick      chan struct{}
}

// New creates a buffer that signals a flush when it reaches maxEvents.
func New(maxEvents int) *Buffer {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &Buffer{
		maxEvents: maxEvents,
		kick:      make(chan struct{}, 1),
	}
}

// Enqueue appends an event. It never blocks the caller and never fails;
// when the buffer reaches its limit it signals the flush scheduler out of
// band instead of flushing inline on the hot path.
func (b *Buffer) Enqueue(ev types.Event) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	full := len(b.events) >= b.maxEvents
	b.mu.Unlock()

	if full {
		select {
		case b.kick <- struct{}{}:
		default:
		}
	}
}

// Patch merges outcome fields into a still-buffered event by id. Returns
// false when the event is no longer buffered (already flushed) or is not
// patchable; in that case the patch is dropped, which is the documented
// best-effort behavior for outcome feedback arriving under load.
func (b *Buffer) Patch(eventID string, p types.Patch) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Search newest-first: patches target recent events.
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].EventID == eventID {
			return b.events[i].ApplyPatch(p)
		}
	}
	return false
}

// Detach atomically takes the current contents, leaving the buffer empty.
func (b *Buffer) Detach() []types.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.events
	b.events = nil
	return batch
}

// Requeue re-prepends a failed batch ahead of anything enqueued since the
// detach, preserving relative order so no event is lost or reordered.
func (b *Buffer) Requeue(batch []types.Event) {
	if len(batch) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]types.Event, 0, len(batch)+len(b.events))
	merged = append(merged, batch...)
	merged = append(merged, b.events...)
	b.events = merged
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Kick returns the channel signalled when the buffer crosses its size
// threshold. The channel has capacity one; signals coalesce.
func (b *Buffer) Kick() <-chan struct{} {
	return b.kick
}
