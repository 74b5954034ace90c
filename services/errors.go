package services

import "errors"

// Engine error kinds. Handlers map these onto HTTP status categories; the
// messages double as the wire error codes.
var (
	ErrRoomNotFound = errors.New("no such room")
	ErrRoomExists   = errors.New("room_exists")
	ErrRoomFinished = errors.New("room finished")
	ErrForbidden    = errors.New("not allowed")
	ErrNotReady     = errors.New("not ready")
	ErrInvalidInput = errors.New("invalid input")
)
