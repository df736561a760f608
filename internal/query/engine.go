// Package query iterates partitions newest-first, applies conjunctive
// predicate filters, and accumulates matches up to an optional limit.
package query

import (
	"context"
	"log"
	"sort"
	"time"

	skalderrors "github.com/skalddb/skald/internal/errors"
	"github.com/skalddb/skald/internal/observability"
	"github.com/skalddb/skald/internal/partition"
	"github.com/skalddb/skald/pkg/storage"
	"github.com/skalddb/skald/pkg/types"
)

// Engine answers filtered historical queries against the partitions.
type Engine struct {
	backend storage.Backend
	stats   *observability.StoreStats
}

// NewEngine creates a query engine.
func NewEngine(backend storage.Backend, stats *observability.StoreStats) *Engine {
	return &Engine{
		backend: backend,
		stats:   stats,
	}
}

// Query returns all matching events in newest-partition-first order,
// oldest-first within each partition, stopping early at Filter.Limit.
// Corrupt partitions are logged and skipped; the query continues over
// the remaining partitions. An empty filter returns every event.
func (e *Engine) Query(ctx context.Context, f types.Filter) ([]types.Event, error) {
	objects, err := e.backend.List(ctx, "")
	if err != nil {
		return nil, skalderrors.NewQueryError(skalderrors.CodeListFailed, "failed to list partitions", err)
	}

	parts := partitionsNewestFirst(objects)
	e.stats.RecordQuery(f.PredicateFields())

	var out []types.Event
	for _, p := range parts {
		if f.TimeRange != nil && !overlapsDay(p.date, f.TimeRange) {
			continue
		}

		data, err := e.backend.Read(ctx, p.path)
		if err != nil {
			log.Printf("query: failed to read partition %s, skipping: %v", p.path, err)
			continue
		}

		events, err := partition.Decode(data)
		if err != nil {
			log.Printf("query: corrupt partition %s, skipping: %v", p.path, err)
			continue
		}

		for _, ev := range events {
			if !f.Matches(&ev) {
				continue
			}
			out = append(out, ev)
			if f.Limit > 0 && len(out) >= f.Limit {
				return out, nil
			}
		}
	}

	return out, nil
}

// datedPartition pairs a listed object with its parsed day.
type datedPartition struct {
	path string
	date time.Time
}

// partitionsNewestFirst keeps only well-formed partition files and sorts
// them newest-first. The date comes from the filename; listing never
// requires decompression.
func partitionsNewestFirst(objects []storage.ObjectInfo) []datedPartition {
	parts := make([]datedPartition, 0, len(objects))
	for _, obj := range objects {
		date, err := types.PartitionDate(obj.Path)
		if err != nil {
			continue
		}
		parts = append(parts, datedPartition{path: obj.Path, date: date})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].date.After(parts[j].date) })
	return parts
}

// overlapsDay reports whether any instant of the partition's day falls
// inside the range. A partition overlapping the range is read in full;
// there is no per-line timestamp index.
func overlapsDay(day time.Time, r *types.TimeRange) bool {
	start, end := types.PartitionBounds(day)
	return start <= r.EndMillis && r.StartMillis < end
}
