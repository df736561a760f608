package types

import (
	"strings"
	"time"
)

// Partition filename layout. The date is encoded in the name so listing
// partitions never requires decompression, and lexicographic order of
// filenames equals chronological order of days.
const (
	PartitionPrefix = "telemetry-"
	PartitionSuffix = ".jsonl.snappy"

	partitionDateLayout = "2006-01-02"
)

// PartitionFilename returns the partition filename for the UTC calendar
// day containing t.
func PartitionFilename(t time.Time) string {
	return PartitionPrefix + t.UTC().Format(partitionDateLayout) + PartitionSuffix
}

// PartitionDate extracts the UTC day from a partition filename.
// Returns ErrInvalidPartition for names that do not follow the layout,
// so foreign files in the store directory are ignored rather than read.
func PartitionDate(name string) (time.Time, error) {
	if !strings.HasPrefix(name, PartitionPrefix) || !strings.HasSuffix(name, PartitionSuffix) {
		return time.Time{}, ErrInvalidPartition
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, PartitionPrefix), PartitionSuffix)
	day, err := time.ParseInLocation(partitionDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidPartition
	}
	return day, nil
}

// PartitionBounds returns the inclusive start and exclusive end of the
// day in Unix milliseconds. Used for partition-level time-range pruning.
func PartitionBounds(day time.Time) (startMillis, endMillis int64) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
