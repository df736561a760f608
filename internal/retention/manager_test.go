package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skalddb/skald/internal/observability"
	"github.com/skalddb/skald/pkg/storage"
	"github.com/skalddb/skald/pkg/types"
)

var today = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, retentionDays int, maxBytes int64) (*Manager, storage.Backend, *observability.StoreStats) {
	t.Helper()
	backend, err := storage.NewLocal(t.TempDir())
	assert.NoError(t, err)
	stats := observability.NewStoreStats()

	m := New(backend, retentionDays, maxBytes, stats)
	m.now = func() time.Time { return today }
	return m, backend, stats
}

// writeSized stores a partition of exactly size bytes for the given day.
func writeSized(t *testing.T, backend storage.Backend, day time.Time, size int) {
	t.Helper()
	assert.NoError(t, backend.Write(context.Background(), types.PartitionFilename(day), make([]byte, size)))
}

func listNames(t *testing.T, backend storage.Backend) []string {
	t.Helper()
	objects, err := backend.List(context.Background(), "")
	assert.NoError(t, err)
	names := make([]string, len(objects))
	for i, obj := range objects {
		names[i] = obj.Path
	}
	return names
}

func TestManager_AgeEviction(t *testing.T) {
	m, backend, stats := newTestManager(t, 30, 1<<30)

	expired := today.AddDate(0, 0, -31)
	boundary := today.AddDate(0, 0, -30)
	recent := today.AddDate(0, 0, -5)
	writeSized(t, backend, expired, 10)
	writeSized(t, backend, boundary, 10)
	writeSized(t, backend, recent, 10)
	writeSized(t, backend, today, 10)

	m.Sweep(context.Background())

	names := listNames(t, backend)
	assert.NotContains(t, names, types.PartitionFilename(expired))
	// A partition exactly at the horizon is still within the window.
	assert.Contains(t, names, types.PartitionFilename(boundary))
	assert.Contains(t, names, types.PartitionFilename(recent))
	assert.Contains(t, names, types.PartitionFilename(today))
	assert.Equal(t, int64(1), stats.Snapshot().PartitionsDeleted)
}

func TestManager_SizeEvictionOldestFirst(t *testing.T) {
	m, backend, _ := newTestManager(t, 30, 250)

	oldest := today.AddDate(0, 0, -3)
	middle := today.AddDate(0, 0, -2)
	newest := today.AddDate(0, 0, -1)
	writeSized(t, backend, oldest, 100)
	writeSized(t, backend, middle, 100)
	writeSized(t, backend, newest, 100)
	writeSized(t, backend, today, 100)

	// 400 bytes against a 250-byte budget: the two oldest go.
	m.Sweep(context.Background())

	names := listNames(t, backend)
	assert.NotContains(t, names, types.PartitionFilename(oldest))
	assert.NotContains(t, names, types.PartitionFilename(middle))
	assert.Contains(t, names, types.PartitionFilename(newest))
	assert.Contains(t, names, types.PartitionFilename(today))
}

func TestManager_NeverEvictsCurrentDay(t *testing.T) {
	m, backend, _ := newTestManager(t, 30, 50)

	// The current day's partition alone exceeds the budget; it survives
	// anyway, with the violation logged rather than enforced.
	writeSized(t, backend, today, 200)

	m.Sweep(context.Background())

	assert.Contains(t, listNames(t, backend), types.PartitionFilename(today))
}

func TestManager_SizeEvictionStopsAtCurrentDay(t *testing.T) {
	m, backend, _ := newTestManager(t, 30, 100)

	yesterday := today.AddDate(0, 0, -1)
	writeSized(t, backend, yesterday, 80)
	writeSized(t, backend, today, 80)

	m.Sweep(context.Background())

	names := listNames(t, backend)
	assert.NotContains(t, names, types.PartitionFilename(yesterday))
	assert.Contains(t, names, types.PartitionFilename(today))
}

func TestManager_ForeignFilesUntouched(t *testing.T) {
	m, backend, _ := newTestManager(t, 30, 10)

	assert.NoError(t, backend.Write(context.Background(), "notes.txt", make([]byte, 1000)))
	writeSized(t, backend, today.AddDate(0, 0, -40), 10)

	m.Sweep(context.Background())

	names := listNames(t, backend)
	assert.Contains(t, names, "notes.txt")
	assert.NotContains(t, names, types.PartitionFilename(today.AddDate(0, 0, -40)))
}

func TestManager_UnderBudgetNoEviction(t *testing.T) {
	m, backend, stats := newTestManager(t, 30, 1000)

	writeSized(t, backend, today.AddDate(0, 0, -2), 100)
	writeSized(t, backend, today, 100)

	m.Sweep(context.Background())

	assert.Len(t, listNames(t, backend), 2)
	assert.Equal(t, int64(0), stats.Snapshot().PartitionsDeleted)
}

func TestManager_StartDailyStop(t *testing.T) {
	m, _, _ := newTestManager(t, 30, 1000)

	m.StartDaily(context.Background())
	assert.NotNil(t, m.cron)
	m.Stop()
	assert.Nil(t, m.cron)
}
