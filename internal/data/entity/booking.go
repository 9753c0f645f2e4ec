package entity

import (
	"time"
)

type BookingChannel string

const (
	BookingChannelCounter BookingChannel = "counter"
	BookingChannelOnline  BookingChannel = "online"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// WalkInCustomerName is recorded when a walk-in customer gives no name.
const WalkInCustomerName = "Khách vãng lai"

type BookedSeat struct {
	Row    string   `json:"row" db:"seat_row"`
	Number int      `json:"number" db:"seat_number"`
	Type   SeatType `json:"type" db:"seat_type"`
	Price  int64    `json:"price" db:"price"`
}

type BookedCombo struct {
	ComboID  string `json:"combo_id" db:"combo_id"`
	Name     string `json:"name" db:"name"`
	Quantity int    `json:"quantity" db:"quantity"`
	Price    int64  `json:"price" db:"price"`
}

// NewBooking is what gets sent to the booking backend when a draft is submitted.
type NewBooking struct {
	ShowtimeID    string         `json:"showtime_id"`
	Seats         []BookedSeat   `json:"seats"`
	Combos        []BookedCombo  `json:"combos"`
	Channel       BookingChannel `json:"booking_type"`
	CustomerPhone string         `json:"customer_phone"`
	CustomerName  string         `json:"customer_name,omitempty"`
	CustomerID    string         `json:"customer_id,omitempty"`
}

// Booking is the backend's acknowledgement of a created booking.
type Booking struct {
	ID            string         `json:"id" db:"id"`
	OrderID       string         `json:"order_id,omitempty" db:"order_id"`
	ShowtimeID    string         `json:"showtime_id" db:"showtime_id"`
	Channel       BookingChannel `json:"booking_type" db:"booking_type"`
	CustomerPhone string         `json:"customer_phone" db:"customer_phone"`
	CustomerName  string         `json:"customer_name,omitempty" db:"customer_name"`
	TotalPrice    int64          `json:"total_price" db:"total_price"`
	Status        BookingStatus  `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}
