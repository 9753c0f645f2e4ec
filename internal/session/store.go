// Package session keeps counter booking drafts between HTTP requests. Each
// session belongs to one staff member and holds exactly one Draft.
package session

import (
	"context"
	"errors"
	"time"

	"cinema-ticketing/internal/booking"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrBusy is returned by Acquire when the same operation is already
	// running for the session.
	ErrBusy = errors.New("operation already in progress")
	// ErrContended means Update kept losing optimistic races and gave up.
	ErrContended = errors.New("session updated concurrently")
)

type Session struct {
	ID        string        `json:"id"`
	StaffID   string        `json:"staff_id"`
	Draft     booking.Draft `json:"draft"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// UpdateFunc derives the next session from the current one. An error aborts
// the update and is returned unchanged to the caller of Update.
type UpdateFunc func(Session) (Session, error)

type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Update applies fn atomically with respect to other Updates of the same
	// session and returns what was stored.
	Update(ctx context.Context, id string, fn UpdateFunc) (Session, error)
	Delete(ctx context.Context, id string) error
	// Acquire marks op as in flight for the session. The returned release
	// must be called once the operation has finished.
	Acquire(ctx context.Context, id, op string) (release func(), err error)
}
