package service

import "errors"

// Engine-level errors. None of these are fatal to the session; callers map
// them to user feedback and the engine keeps converging via reconciliation.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrAccessDenied = errors.New("access denied")
	ErrRateLimited  = errors.New("sending too fast")
	ErrEmptyMessage = errors.New("empty message")
)
