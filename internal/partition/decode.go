package partition

import (
	"bytes"

	"github.com/golang/snappy"

	skalderrors "github.com/skalddb/skald/internal/errors"
	"github.com/skalddb/skald/pkg/types"
)

// Decode decompresses a partition and parses every line into an event.
// Any decompression or parse failure marks the whole partition corrupt;
// the query engine logs and skips it rather than returning partial lines.
func Decode(data []byte) ([]types.Event, error) {
	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, skalderrors.NewPartitionError(skalderrors.CodeCorruptPartition, "failed to decompress partition", err)
	}

	var events []types.Event
	for _, line := range bytes.Split(decoded, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		ev, err := types.DecodeLine(line)
		if err != nil {
			return nil, skalderrors.NewPartitionError(skalderrors.CodeCorruptPartition, "failed to parse partition line", err)
		}
		events = append(events, ev)
	}
	return events, nil
}
