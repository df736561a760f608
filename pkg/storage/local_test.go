package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocal_WriteReadRoundTrip(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	assert.NoError(t, err)

	data := []byte("partition contents")
	assert.NoError(t, l.Write(context.Background(), "telemetry-2026-03-15.jsonl.snappy", data))

	got, err := l.Read(context.Background(), "telemetry-2026-03-15.jsonl.snappy")
	assert.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocal_WriteReplacesExisting(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, l.Write(context.Background(), "obj", []byte("old")))
	assert.NoError(t, l.Write(context.Background(), "obj", []byte("new")))

	got, err := l.Read(context.Background(), "obj")
	assert.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestLocal_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir)
	assert.NoError(t, err)

	assert.NoError(t, l.Write(context.Background(), "obj", []byte("data")))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "obj", entries[0].Name())
}

func TestLocal_ReadMissing(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	assert.NoError(t, err)

	_, err = l.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_ListReportsSizes(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, l.Write(context.Background(), "a", make([]byte, 10)))
	assert.NoError(t, l.Write(context.Background(), "b", make([]byte, 20)))

	objects, err := l.List(context.Background(), "")
	assert.NoError(t, err)
	assert.Len(t, objects, 2)

	sizes := map[string]int64{}
	for _, obj := range objects {
		sizes[obj.Path] = obj.SizeBytes
	}
	assert.Equal(t, int64(10), sizes["a"])
	assert.Equal(t, int64(20), sizes["b"])
}

func TestLocal_ListPrefixFilter(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, l.Write(context.Background(), "telemetry-2026-03-15.jsonl.snappy", []byte("x")))
	assert.NoError(t, l.Write(context.Background(), "other.txt", []byte("y")))

	objects, err := l.List(context.Background(), "telemetry-")
	assert.NoError(t, err)
	assert.Len(t, objects, 1)
	assert.Equal(t, "telemetry-2026-03-15.jsonl.snappy", objects[0].Path)
}

func TestLocal_ListSkipsInFlightTempFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir)
	assert.NoError(t, err)

	// Simulate a crashed write that left its temp file behind.
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "obj.tmp-123456"), []byte("partial"), 0644))
	assert.NoError(t, l.Write(context.Background(), "obj", []byte("data")))

	objects, err := l.List(context.Background(), "")
	assert.NoError(t, err)
	assert.Len(t, objects, 1)
	assert.Equal(t, "obj", objects[0].Path)
}

func TestLocal_DeleteIdempotent(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	assert.NoError(t, err)

	assert.NoError(t, l.Write(context.Background(), "obj", []byte("data")))
	assert.NoError(t, l.Delete(context.Background(), "obj"))
	assert.NoError(t, l.Delete(context.Background(), "obj"))

	_, err = l.Read(context.Background(), "obj")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_CancelledContext(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Read(ctx, "obj")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, l.Write(ctx, "obj", nil), context.Canceled)
}
