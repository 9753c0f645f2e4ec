package booking

import "errors"

// Validation errors. They block only the attempted transition and leave the
// draft as it was.
var (
	ErrInvalidPhone         = errors.New("invalid phone: at least 10 characters required")
	ErrNoShowtimesAvailable = errors.New("no showtimes available for this movie")
	ErrSeatLimitExceeded    = errors.New("seat limit exceeded: at most 10 seats per booking")
	ErrNoSeatsSelected      = errors.New("no seats selected")
	ErrNoShowtimeSelected   = errors.New("no showtime selected")
	ErrInvalidQuantity      = errors.New("invalid combo quantity")
	ErrInvalidSeat          = errors.New("invalid seat")
	ErrWrongStep            = errors.New("operation not allowed at current step")
	ErrNoPreviousStep       = errors.New("already at first step")
)

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidPhone,
		ErrNoShowtimesAvailable,
		ErrSeatLimitExceeded,
		ErrNoSeatsSelected,
		ErrNoShowtimeSelected,
		ErrInvalidQuantity,
		ErrInvalidSeat,
		ErrWrongStep,
		ErrNoPreviousStep,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
