package partition

import (
	"context"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"

	"github.com/skalddb/skald/pkg/storage"
	"github.com/skalddb/skald/pkg/types"
)

var testDay = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestWriter(t *testing.T) (*Writer, storage.Backend) {
	t.Helper()
	backend, err := storage.NewLocal(t.TempDir())
	assert.NoError(t, err)

	w := NewWriter(backend, nil)
	w.now = func() time.Time { return testDay }
	return w, backend
}

func readPartition(t *testing.T, backend storage.Backend, day time.Time) []types.Event {
	t.Helper()
	data, err := backend.Read(context.Background(), types.PartitionFilename(day))
	assert.NoError(t, err)
	events, err := Decode(data)
	assert.NoError(t, err)
	return events
}

func TestWriter_WritesCurrentDayPartition(t *testing.T) {
	w, backend := newTestWriter(t)

	batch := []types.Event{
		types.NewRoutingEvent(types.RoutingPayload{Provider: "openAI"}),
		types.NewAuditEvent(types.AuditPayload{Action: "export"}),
	}
	assert.NoError(t, w.Write(context.Background(), batch))

	events := readPartition(t, backend, testDay)
	assert.Len(t, events, 2)
	assert.Equal(t, batch[0].EventID, events[0].EventID)
	assert.Equal(t, batch[1].EventID, events[1].EventID)
}

func TestWriter_MergesIntoExistingPartition(t *testing.T) {
	w, backend := newTestWriter(t)

	first := types.NewRoutingEvent(types.RoutingPayload{Provider: "openAI"})
	second := types.NewRoutingEvent(types.RoutingPayload{Provider: "ollama"})

	assert.NoError(t, w.Write(context.Background(), []types.Event{first}))
	assert.NoError(t, w.Write(context.Background(), []types.Event{second}))

	// Both batches land in the same file, existing content first.
	events := readPartition(t, backend, testDay)
	assert.Len(t, events, 2)
	assert.Equal(t, first.EventID, events[0].EventID)
	assert.Equal(t, second.EventID, events[1].EventID)
}

func TestWriter_EmptyBatchIsNoop(t *testing.T) {
	w, backend := newTestWriter(t)

	assert.NoError(t, w.Write(context.Background(), nil))
	_, err := backend.Read(context.Background(), types.PartitionFilename(testDay))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWriter_CorruptExistingTreatedAsEmpty(t *testing.T) {
	w, backend := newTestWriter(t)
	name := types.PartitionFilename(testDay)

	// A partition that does not decompress must not block future writes.
	assert.NoError(t, backend.Write(context.Background(), name, []byte("not snappy data")))

	ev := types.NewRoutingEvent(types.RoutingPayload{Provider: "openAI"})
	assert.NoError(t, w.Write(context.Background(), []types.Event{ev}))

	events := readPartition(t, backend, testDay)
	assert.Len(t, events, 1)
	assert.Equal(t, ev.EventID, events[0].EventID)
}

func TestWriter_DayRollover(t *testing.T) {
	backend, err := storage.NewLocal(t.TempDir())
	assert.NoError(t, err)

	w := NewWriter(backend, nil)
	day := testDay
	w.now = func() time.Time { return day }

	assert.NoError(t, w.Write(context.Background(), []types.Event{types.NewAuditEvent(types.AuditPayload{Action: "a"})}))

	// Batches flushed after midnight go to the next day's partition.
	day = testDay.AddDate(0, 0, 1)
	assert.NoError(t, w.Write(context.Background(), []types.Event{types.NewAuditEvent(types.AuditPayload{Action: "b"})}))

	assert.Len(t, readPartition(t, backend, testDay), 1)
	assert.Len(t, readPartition(t, backend, day), 1)
}

func TestDecode_RoundTrip(t *testing.T) {
	events := []types.Event{
		types.NewRoutingEvent(types.RoutingPayload{Provider: "openAI", Confidence: 0.9}),
		types.NewPerformanceEvent(types.PerformancePayload{Provider: "ollama", IsLocal: true}),
	}

	var raw []byte
	for _, ev := range events {
		line, err := types.EncodeLine(ev)
		assert.NoError(t, err)
		raw = append(raw, line...)
		raw = append(raw, '\n')
	}

	got, err := Decode(snappy.Encode(nil, raw))
	assert.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestDecode_CorruptCompression(t *testing.T) {
	_, err := Decode([]byte("definitely not snappy"))
	assert.Error(t, err)
}

func TestDecode_CorruptLine(t *testing.T) {
	line, err := types.EncodeLine(types.NewAuditEvent(types.AuditPayload{Action: "a"}))
	assert.NoError(t, err)

	raw := append(line, '\n')
	raw = append(raw, []byte("truncated garbage\n")...)

	// One bad line marks the whole partition corrupt.
	_, err = Decode(snappy.Encode(nil, raw))
	assert.Error(t, err)
}
