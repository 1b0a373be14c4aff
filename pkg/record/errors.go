package record

import "errors"

// Service errors. The API client maps transport outcomes onto these so
// callers can branch with errors.Is without inspecting HTTP status codes.
var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("authentication failed")
	ErrUnavailable  = errors.New("service unavailable")
	ErrValidation   = errors.New("invalid request")
)

// Engine errors.
var (
	ErrInvalidID     = errors.New("invalid record ID")
	ErrInvalidType   = errors.New("unknown record type")
	ErrWorldUnknown  = errors.New("record world is unknown")
	ErrWorldMismatch = errors.New("records belong to different worlds")
	ErrSessionClosed = errors.New("auto-save session is closed")
)
