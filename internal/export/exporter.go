// Package export flattens matching events into bulk output: JSONL for
// the complete structured form, CSV for a fixed tabular column set.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/skalddb/skald/internal/query"
	"github.com/skalddb/skald/pkg/types"
)

// Format selects the export output shape.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// csvHeader is the fixed tabular column set. Only the routing variant
// fills every column; other variants are omitted from CSV output
// entirely. JSONL is the complete form.
var csvHeader = []string{
	"timestamp",
	"taskType",
	"provider",
	"modelName",
	"isLocal",
	"confidence",
	"latency",
	"tokensPerSecond",
	"userAccepted",
	"userModified",
	"editDistance",
	"derivedQualityScore",
}

// Exporter writes bulk exports of query results.
type Exporter struct {
	engine *query.Engine
}

// NewExporter creates an exporter over the given query engine.
func NewExporter(engine *query.Engine) *Exporter {
	return &Exporter{engine: engine}
}

// WriteJSONL writes every matching event as one JSON line. Returns the
// number of events written.
func (x *Exporter) WriteJSONL(ctx context.Context, f types.Filter, w io.Writer) (int, error) {
	events, err := x.engine.Query(ctx, f)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return 0, fmt.Errorf("export: failed to encode event %s: %w", ev.EventID, err)
		}
	}
	return len(events), nil
}

// WriteCSV writes matching routing events as tabular rows under the
// fixed header. Returns the number of rows written, which may be fewer
// than the number of matching events.
func (x *Exporter) WriteCSV(ctx context.Context, f types.Filter, w io.Writer) (int, error) {
	events, err := x.engine.Query(ctx, f)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("export: failed to write CSV header: %w", err)
	}

	rows := 0
	for _, ev := range events {
		if ev.Routing == nil {
			// The tabular form only covers routing events.
			continue
		}
		if err := cw.Write(routingRow(&ev)); err != nil {
			return rows, fmt.Errorf("export: failed to write CSV row: %w", err)
		}
		rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("export: failed to flush CSV: %w", err)
	}
	return rows, nil
}

// ExportToFile writes an export into dir under a unique job filename and
// returns the file path and the number of records written.
func (x *Exporter) ExportToFile(ctx context.Context, f types.Filter, format Format, dir string) (string, int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("export: failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("export-%s.%s", uuid.New().String()[:8], format)
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("export: failed to create output file: %w", err)
	}
	defer out.Close()

	var n int
	switch format {
	case FormatJSONL:
		n, err = x.WriteJSONL(ctx, f, out)
	case FormatCSV:
		n, err = x.WriteCSV(ctx, f, out)
	default:
		err = fmt.Errorf("export: unsupported format %q", format)
	}
	if err != nil {
		os.Remove(path)
		return "", 0, err
	}

	return path, n, nil
}

// routingRow flattens one routing event into the fixed column set.
// Unset outcome fields become empty cells.
func routingRow(ev *types.Event) []string {
	r := ev.Routing
	return []string{
		strconv.FormatInt(ev.TimestampMillis, 10),
		r.TaskType,
		r.Provider,
		r.ModelName,
		strconv.FormatBool(r.IsLocal),
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		strconv.FormatInt(r.LatencyMillis, 10),
		strconv.FormatFloat(r.TokensPerSecond, 'f', -1, 64),
		optionalBool(r.UserAccepted),
		optionalBool(r.UserModified),
		optionalInt(r.EditDistance),
		optionalFloat(r.DerivedQualityScore),
	}
}

func optionalBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
