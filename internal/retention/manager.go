// Package retention enforces the age and size invariants over partitions:
// nothing older than the retention window survives a pass, and total
// on-disk size is driven back under the byte budget oldest-first.
package retention

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/skalddb/skald/internal/observability"
	"github.com/skalddb/skald/pkg/storage"
	"github.com/skalddb/skald/pkg/types"
)

// Manager deletes partitions past the retention window and evicts the
// oldest remaining ones when aggregate size exceeds the budget. The
// current day's partition is never evicted.
type Manager struct {
	backend       storage.Backend
	retentionDays int
	maxBytes      int64
	stats         *observability.StoreStats

	now  func() time.Time
	cron *cron.Cron

	// One sweep at a time; the post-write path and the daily schedule
	// may otherwise overlap.
	mu sync.Mutex
}

// partitionInfo pairs a listed object with its parsed day.
type partitionInfo struct {
	path string
	date time.Time
	size int64
}

// New creates a retention manager.
func New(backend storage.Backend, retentionDays int, maxBytes int64, stats *observability.StoreStats) *Manager {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if maxBytes <= 0 {
		maxBytes = 500_000_000
	}
	return &Manager{
		backend:       backend,
		retentionDays: retentionDays,
		maxBytes:      maxBytes,
		stats:         stats,
		now:           time.Now,
	}
}

// Sweep runs one retention pass. It is invoked after every successful
// partition write and on the daily schedule. Failures are logged and
// skipped; Sweep never returns an error into the write path.
func (m *Manager) Sweep(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	objects, err := m.backend.List(ctx, "")
	if err != nil {
		log.Printf("retention: failed to list partitions, skipping pass: %v", err)
		return
	}

	parts := make([]partitionInfo, 0, len(objects))
	for _, obj := range objects {
		date, err := types.PartitionDate(obj.Path)
		if err != nil {
			// Foreign files in the store directory are not ours to delete.
			continue
		}
		parts = append(parts, partitionInfo{path: obj.Path, date: date, size: obj.SizeBytes})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].date.Before(parts[j].date) })

	today := types.Day(m.now())
	cutoff := today.AddDate(0, 0, -m.retentionDays)

	// Age eviction: everything older than the retention window goes,
	// regardless of the size budget.
	kept := parts[:0]
	for _, p := range parts {
		if p.date.Before(cutoff) {
			m.delete(ctx, p)
			continue
		}
		kept = append(kept, p)
	}

	// Size eviction: delete oldest-first until under budget. The current
	// day's partition is exempt even if it alone exceeds the budget.
	var total int64
	for _, p := range kept {
		total += p.size
	}
	for _, p := range kept {
		if total <= m.maxBytes {
			break
		}
		if p.date.Equal(today) {
			log.Printf("retention: size budget exceeded (%d > %d bytes) but only the current day's partition remains", total, m.maxBytes)
			break
		}
		if m.delete(ctx, p) {
			total -= p.size
		}
	}
}

// delete removes one partition, logging and skipping on failure so the
// pass continues over the remaining partitions.
func (m *Manager) delete(ctx context.Context, p partitionInfo) bool {
	if err := m.backend.Delete(ctx, p.path); err != nil {
		log.Printf("retention: failed to delete partition %s, skipping: %v", p.path, err)
		return false
	}
	m.stats.RecordPartitionDeleted()
	return true
}

// StartDaily schedules a midnight-UTC sweep so stores that stop writing
// still age their partitions out.
func (m *Manager) StartDaily(ctx context.Context) {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc("0 0 * * *", func() {
		m.Sweep(ctx)
	})
	if err != nil {
		log.Printf("retention: failed to schedule daily sweep: %v", err)
		return
	}
	c.Start()
	m.cron = c
}

// Stop halts the daily schedule, waiting for a running sweep to finish.
func (m *Manager) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
		m.cron = nil
	}
}
