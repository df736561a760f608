// Package flush runs the periodic and size-triggered loop that moves
// buffered events into durable partition storage.
package flush

import (
	"context"
	"log"
	"time"

	"github.com/skalddb/skald/internal/buffer"
	"github.com/skalddb/skald/internal/observability"
	"github.com/skalddb/skald/pkg/types"
)

// Writer persists a batch of events into the current day's partition.
type Writer interface {
	Write(ctx context.Context, batch []types.Event) error
}

// Flusher drains the ingest buffer on a fixed interval and whenever the
// buffer signals its size threshold. Flush failures are logged and the
// batch is requeued; they never propagate into application code.
type Flusher struct {
	buf      *buffer.Buffer
	writer   Writer
	interval time.Duration
	stats    *observability.StoreStats
}

// New creates a flusher.
func New(buf *buffer.Buffer, writer Writer, interval time.Duration, stats *observability.StoreStats) *Flusher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Flusher{
		buf:      buf,
		writer:   writer,
		interval: interval,
		stats:    stats,
	}
}

// Run starts the flush loop and blocks until ctx is cancelled, then
// drains whatever is still buffered.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Graceful shutdown: one final flush with a fresh context
			// so the drain is not cancelled mid-write.
			f.FlushOnce(context.Background())
			return
		case <-ticker.C:
			f.FlushOnce(ctx)
		case <-f.buf.Kick():
			f.FlushOnce(ctx)
		}
	}
}

// FlushOnce detaches the buffer and writes the batch. On failure the
// batch is requeued at the front so the next tick retries it in order.
// The returned error is informational for manual callers; the Run loop
// ignores it.
func (f *Flusher) FlushOnce(ctx context.Context) error {
	batch := f.buf.Detach()
	if len(batch) == 0 {
		return nil
	}

	if err := f.writer.Write(ctx, batch); err != nil {
		log.Printf("flush: write of %d events failed, requeueing: %v", len(batch), err)
		f.buf.Requeue(batch)
		f.stats.RecordFlushFailure()
		return err
	}

	f.stats.RecordFlush(len(batch))
	return nil
}
