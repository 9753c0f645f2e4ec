// Package gateway is the boundary to the cinema backend. The rest of the
// service sees only the contracts below and the normalized entity types;
// whatever shape the backend answers in is mapped here.
package gateway

import (
	"context"
	"errors"
	"time"

	"cinema-ticketing/internal/data/entity"
)

var (
	// ErrNotFound means the backend answered but has no such record.
	ErrNotFound = errors.New("not found")
	// ErrBackendUnavailable covers transport failures, timeouts and 5xx
	// answers. The call can be retried.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrSeatConflict means the backend refused the booking because at least
	// one seat is no longer free. Retrying the same request cannot succeed.
	ErrSeatConflict = errors.New("seat no longer available")
	// ErrRejected is any other refusal of a request by the backend.
	ErrRejected = errors.New("request rejected by backend")
)

type ShowtimeFilter struct {
	MovieID  string
	CinemaID string
	Date     time.Time
}

type CustomerDirectory interface {
	// LookupCustomerByPhone returns ErrNotFound when no account matches.
	LookupCustomerByPhone(ctx context.Context, phone string) (*entity.Customer, error)
}

type Catalog interface {
	ListShowtimes(ctx context.Context, filter ShowtimeFilter) ([]entity.Showtime, error)
	ListCinemas(ctx context.Context) ([]entity.CinemaSummary, error)
	ListCombos(ctx context.Context) ([]entity.Combo, error)
}

type BookingCreator interface {
	CreateBooking(ctx context.Context, req entity.NewBooking) (*entity.Booking, error)
}

type PaymentVerification struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PaymentVerifier interface {
	VerifyPaymentCallback(ctx context.Context, params map[string]string) (*PaymentVerification, error)
}

// Backend bundles the collaborators one deployment talks to.
type Backend struct {
	Customers CustomerDirectory
	Catalog   Catalog
	Bookings  BookingCreator
	Payments  PaymentVerifier
}

// IsRetryable reports whether repeating the call may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
