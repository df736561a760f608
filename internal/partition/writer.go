// Package partition serializes event batches into compressed per-day
// partition files and decodes them back for queries.
package partition

import (
	"bytes"
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang/snappy"

	skalderrors "github.com/skalddb/skald/internal/errors"
	"github.com/skalddb/skald/internal/retention"
	"github.com/skalddb/skald/pkg/storage"
	"github.com/skalddb/skald/pkg/types"
)

// Writer merges event batches into the current day's partition via
// whole-file read-modify-write: the on-disk format is whole-file
// compressed, so there is no true append. Partition files stay in the
// single-digit-megabyte range, which keeps the full rewrite cheap.
type Writer struct {
	backend   storage.Backend
	retention *retention.Manager

	now func() time.Time
}

// NewWriter creates a partition writer. retention may be nil for callers
// that run their own sweeps.
func NewWriter(backend storage.Backend, ret *retention.Manager) *Writer {
	return &Writer{
		backend:   backend,
		retention: ret,
		now:       time.Now,
	}
}

// Write merges the batch into today's partition and triggers a retention
// pass on success. A transient storage failure is returned to the caller
// (the flusher requeues the batch); an unreadable existing partition is
// treated as empty so one corrupt file never blocks all future writes.
func (w *Writer) Write(ctx context.Context, batch []types.Event) error {
	if len(batch) == 0 {
		return nil
	}

	name := types.PartitionFilename(w.now())

	var buf bytes.Buffer
	buf.Write(w.readExisting(ctx, name))

	for _, ev := range batch {
		line, err := types.EncodeLine(ev)
		if err != nil {
			return skalderrors.NewPartitionError(skalderrors.CodeEncodeFailed, "failed to serialize event", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	compressed := snappy.Encode(nil, buf.Bytes())
	if err := w.backend.Write(ctx, name, compressed); err != nil {
		return skalderrors.NewStorageError(skalderrors.CodeWriteFailed, "failed to write partition "+name, err)
	}

	if w.retention != nil {
		w.retention.Sweep(ctx)
	}
	return nil
}

// readExisting returns the decompressed contents of the current partition,
// normalized to end with a newline. Missing, unreadable, or corrupt
// partitions come back empty with a logged warning; prior content is
// sacrificed rather than blocking the write path.
func (w *Writer) readExisting(ctx context.Context, name string) []byte {
	data, err := w.backend.Read(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("partition: unreadable partition %s treated as empty: %v", name, err)
		}
		return nil
	}

	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		log.Printf("partition: corrupt partition %s treated as empty: %v", name, err)
		return nil
	}

	if len(decoded) > 0 && decoded[len(decoded)-1] != '\n' {
		decoded = append(decoded, '\n')
	}
	return decoded
}
