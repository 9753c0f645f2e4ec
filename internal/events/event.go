// Package events publishes booking lifecycle events to the message broker
// chosen in configuration.
package events

import (
	"time"

	"cinema-ticketing/internal/data/entity"

	"github.com/google/uuid"
)

const BookingCreatedType = "booking.created"

type BookingCreated struct {
	EventID    string                `json:"event_id"`
	Type       string                `json:"type"`
	BookingID  string                `json:"booking_id"`
	OrderID    string                `json:"order_id,omitempty"`
	ShowtimeID string                `json:"showtime_id"`
	Channel    entity.BookingChannel `json:"channel"`
	Phone      string                `json:"customer_phone"`
	StaffID    string                `json:"staff_id,omitempty"`
	Seats      []string              `json:"seats"`
	ComboCount int                   `json:"combo_count"`
	Total      int64                 `json:"total"`
	CreatedAt  time.Time             `json:"created_at"`
}

// NewBookingCreated describes a booking the backend just accepted. total is
// the amount the counter showed the customer.
func NewBookingCreated(b *entity.Booking, req entity.NewBooking, staffID string, total int64) BookingCreated {
	seats := make([]string, 0, len(req.Seats))
	for _, s := range req.Seats {
		seats = append(seats, entity.Seat{Row: s.Row, Number: s.Number}.Label())
	}
	combos := 0
	for _, c := range req.Combos {
		combos += c.Quantity
	}

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return BookingCreated{
		EventID:    uuid.NewString(),
		Type:       BookingCreatedType,
		BookingID:  b.ID,
		OrderID:    b.OrderID,
		ShowtimeID: req.ShowtimeID,
		Channel:    req.Channel,
		Phone:      req.CustomerPhone,
		StaffID:    staffID,
		Seats:      seats,
		ComboCount: combos,
		Total:      total,
		CreatedAt:  createdAt.UTC(),
	}
}
