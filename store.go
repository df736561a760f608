// Package skald implements an embeddable, single-node store for
// structured interaction events: buffered ingest, compressed per-day
// partitions, conjunctive predicate queries, retention eviction, and
// bulk export.
//
// The store is built by explicit construction; embedders hold a *Store
// reference rather than resolving a process-wide singleton. No failure
// in the store ever propagates into the producing application's primary
// workflow: ingest never blocks, flush failures are retried, and
// degraded states mean "telemetry temporarily incomplete".
package skald

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/skalddb/skald/internal/buffer"
	"github.com/skalddb/skald/internal/export"
	"github.com/skalddb/skald/internal/flush"
	"github.com/skalddb/skald/internal/observability"
	"github.com/skalddb/skald/internal/partition"
	"github.com/skalddb/skald/internal/query"
	"github.com/skalddb/skald/internal/retention"
	"github.com/skalddb/skald/pkg/config"
	"github.com/skalddb/skald/pkg/storage"
	"github.com/skalddb/skald/pkg/types"
)

// Store owns the full event pipeline: buffer, flush scheduler, partition
// writer, query engine, and retention manager, all over one backend.
type Store struct {
	cfg     *config.Config
	backend storage.Backend

	buf       *buffer.Buffer
	flusher   *flush.Flusher
	writer    *partition.Writer
	engine    *query.Engine
	retention *retention.Manager
	exporter  *export.Exporter
	stats     *observability.StoreStats

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New wires a store over an explicit backend. Invalid tuning values in
// cfg fall back to defaults; only the backend selection can fail.
func New(cfg *config.Config, backend storage.Backend) (*Store, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Resolve()
	cfg.Sanitize()

	stats := observability.NewStoreStats()
	ret := retention.New(backend, cfg.RetentionDays, cfg.MaxBytes, stats)
	writer := partition.NewWriter(backend, ret)
	buf := buffer.New(cfg.MaxBufferedEvents)

	return &Store{
		cfg:       cfg,
		backend:   backend,
		buf:       buf,
		flusher:   flush.New(buf, writer, cfg.FlushInterval, stats),
		writer:    writer,
		engine:    query.NewEngine(backend, stats),
		retention: ret,
		exporter:  export.NewExporter(query.NewEngine(backend, stats)),
		stats:     stats,
	}, nil
}

// Open constructs the backend described by cfg.Storage and wires a store
// over it.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	var backend storage.Backend
	var err error
	switch cfg.Storage.Type {
	case "local":
		backend, err = storage.NewLocal(cfg.Storage.Path)
	case "s3":
		backend, err = storage.NewS3(ctx, cfg.Storage.S3.Bucket, storage.S3Config{
			Region:   cfg.Storage.S3.Region,
			Endpoint: cfg.Storage.S3.Endpoint,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return New(cfg, backend)
}

// Start launches the flush scheduler and the daily retention sweep.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.flusher.Run(ctx)
	}()

	s.retention.StartDaily(ctx)
}

// Record accepts an event onto the ingest buffer. It never blocks and
// never fails; it is safe to call from the application's hot path.
func (s *Store) Record(ev types.Event) {
	s.stats.RecordEnqueued()
	s.buf.Enqueue(ev)
}

// RecordRouting creates and records a routing event, returning its id so
// outcome fields can be patched later.
func (s *Store) RecordRouting(p types.RoutingPayload) string {
	ev := types.NewRoutingEvent(p)
	s.Record(ev)
	return ev.EventID
}

// RecordPerformance creates and records a performance sample.
func (s *Store) RecordPerformance(p types.PerformancePayload) string {
	ev := types.NewPerformanceEvent(p)
	s.Record(ev)
	return ev.EventID
}

// RecordAudit creates and records an audit action.
func (s *Store) RecordAudit(p types.AuditPayload) string {
	ev := types.NewAuditEvent(p)
	s.Record(ev)
	return ev.EventID
}

// Patch merges outcome fields into a still-buffered routing event.
// Patches for events that have already been flushed are dropped; this is
// documented best-effort behavior, visible in Stats as DroppedPatches.
func (s *Store) Patch(eventID string, p types.Patch) bool {
	applied := s.buf.Patch(eventID, p)
	s.stats.RecordPatch(applied)
	return applied
}

// Flush forces a synchronous flush of the buffer. On failure the batch
// is requeued and the error returned; the periodic scheduler will retry.
func (s *Store) Flush(ctx context.Context) error {
	return s.flusher.FlushOnce(ctx)
}

// Query returns all events matching the filter. An empty filter returns
// every event across all partitions, unbounded unless Limit is set.
func (s *Store) Query(ctx context.Context, f types.Filter) ([]types.Event, error) {
	return s.engine.Query(ctx, f)
}

// ExportJSONL writes every matching event to w as one JSON line each.
func (s *Store) ExportJSONL(ctx context.Context, f types.Filter, w io.Writer) (int, error) {
	return s.exporter.WriteJSONL(ctx, f, w)
}

// ExportCSV writes matching routing events to w as tabular rows. Other
// event variants are omitted from the tabular form.
func (s *Store) ExportCSV(ctx context.Context, f types.Filter, w io.Writer) (int, error) {
	return s.exporter.WriteCSV(ctx, f, w)
}

// ExportToFile writes an export file ("jsonl" or "csv") into dir and
// returns its path and record count.
func (s *Store) ExportToFile(ctx context.Context, f types.Filter, format, dir string) (string, int, error) {
	return s.exporter.ExportToFile(ctx, f, export.Format(format), dir)
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() observability.Snapshot {
	return s.stats.Snapshot()
}

// BufferedEvents returns the number of events awaiting flush.
func (s *Store) BufferedEvents() int {
	return s.buf.Len()
}

// Close stops the background loops, draining the buffer with one final
// flush before returning.
func (s *Store) Close() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.retention.Stop()
}
