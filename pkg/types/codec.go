package types

import (
	"encoding/json"
	"fmt"
)

// EncodeLine serializes an event to a single JSONL line (without the
// trailing newline). The encoding round-trips exactly through DecodeLine.
func EncodeLine(e Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.EventID, err)
	}
	return json.Marshal(e)
}

// DecodeLine parses one JSONL line back into an event.
func DecodeLine(line []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(line, &e); err != nil {
		return Event{}, fmt.Errorf("decode event line: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, fmt.Errorf("decode event line: %w", err)
	}
	return e, nil
}
