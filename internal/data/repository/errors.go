package repository

import "errors"

// ErrSeatTaken is returned by BookingRepository.Create when at least one
// requested seat already belongs to a pending or confirmed booking.
var ErrSeatTaken = errors.New("seat already booked")

// ErrShowtimeClosed means the showtime is missing, inactive, cancelled or
// completed, so no booking can be attached to it.
var ErrShowtimeClosed = errors.New("showtime not open for booking")
