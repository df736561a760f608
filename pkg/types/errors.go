package types

import "errors"

var (
	ErrMissingEventID   = errors.New("event id is empty")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrPayloadMismatch  = errors.New("payload does not match event type")
	ErrInvalidPartition = errors.New("invalid partition filename")
)
