package usecase

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrStaleResponse means the draft was reset while a backend call was
	// outstanding, so its result was dropped.
	ErrStaleResponse = errors.New("draft changed while the request was in flight")
	// ErrOperationInFlight rejects a second identical request while the first
	// is still waiting on the backend.
	ErrOperationInFlight = errors.New("operation already in progress")
	ErrShowtimeNotFound  = errors.New("showtime not found")
	ErrComboNotFound     = errors.New("combo not found")
	ErrInvalidDate       = errors.New("invalid date")
)
