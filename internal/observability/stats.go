// Package observability provides in-process counters for the store:
// ingest and flush throughput, dropped patches, retention activity, and
// query predicate frequency for spotting hot filter fields.
package observability

import (
	"sort"
	"sync"
	"time"
)

// StoreStats tracks store activity. All methods are O(1) and thread-safe.
type StoreStats struct {
	mu sync.Mutex

	enqueued          int64
	patched           int64
	droppedPatches    int64
	flushes           int64
	flushFailures     int64
	flushedEvents     int64
	queries           int64
	partitionsDeleted int64

	predicateFreq map[string]*PredicateStats
}

// PredicateStats holds usage statistics for one filter field.
type PredicateStats struct {
	Field     string
	Frequency int64
	LastSeen  time.Time
}

// Snapshot is a point-in-time copy of the store counters.
type Snapshot struct {
	Enqueued          int64
	Patched           int64
	DroppedPatches    int64
	Flushes           int64
	FlushFailures     int64
	FlushedEvents     int64
	Queries           int64
	PartitionsDeleted int64
}

// NewStoreStats creates a new stats tracker.
func NewStoreStats() *StoreStats {
	return &StoreStats{
		predicateFreq: make(map[string]*PredicateStats),
	}
}

// RecordEnqueued counts one event accepted into the buffer.
func (s *StoreStats) RecordEnqueued() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued++
}

// RecordPatch counts one patch, applied or dropped.
func (s *StoreStats) RecordPatch(applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if applied {
		s.patched++
	} else {
		s.droppedPatches++
	}
}

// RecordFlush counts one successful flush of n events.
func (s *StoreStats) RecordFlush(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	s.flushedEvents += int64(n)
}

// RecordFlushFailure counts one failed flush attempt.
func (s *StoreStats) RecordFlushFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushFailures++
}

// RecordPartitionDeleted counts one partition removed by retention.
func (s *StoreStats) RecordPartitionDeleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partitionsDeleted++
}

// RecordQuery counts one query and the filter fields it used.
func (s *StoreStats) RecordQuery(fields []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries++
	now := time.Now()
	for _, f := range fields {
		stats, ok := s.predicateFreq[f]
		if !ok {
			stats = &PredicateStats{Field: f}
			s.predicateFreq[f] = stats
		}
		stats.Frequency++
		stats.LastSeen = now
	}
}

// Snapshot returns a copy of the current counters.
func (s *StoreStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Enqueued:          s.enqueued,
		Patched:           s.patched,
		DroppedPatches:    s.droppedPatches,
		Flushes:           s.flushes,
		FlushFailures:     s.flushFailures,
		FlushedEvents:     s.flushedEvents,
		Queries:           s.queries,
		PartitionsDeleted: s.partitionsDeleted,
	}
}

// TopPredicates returns the top n filter fields by frequency, descending.
func (s *StoreStats) TopPredicates(n int) []PredicateStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || len(s.predicateFreq) == 0 {
		return []PredicateStats{}
	}

	stats := make([]PredicateStats, 0, len(s.predicateFreq))
	for _, p := range s.predicateFreq {
		stats = append(stats, *p)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Frequency > stats[j].Frequency
	})

	if n > len(stats) {
		n = len(stats)
	}
	return stats[:n]
}
