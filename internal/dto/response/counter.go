package response

import (
	"time"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/session"
)

type SessionResponse struct {
	ID            string                   `json:"id"`
	Generation    uint64                   `json:"generation"`
	Step          int                      `json:"step"`
	StepName      string                   `json:"step_name"`
	CustomerPhone string                   `json:"customer_phone,omitempty"`
	CustomerName  string                   `json:"customer_name,omitempty"`
	Customer      *entity.Customer         `json:"customer,omitempty"`
	WalkIn        bool                     `json:"walk_in"`
	Movie         *entity.MovieSummary     `json:"movie,omitempty"`
	Showtimes     []entity.Showtime        `json:"showtimes,omitempty"`
	Showtime      *entity.Showtime         `json:"showtime,omitempty"`
	Seats         []booking.SeatSelection  `json:"seats"`
	Combos        []booking.ComboSelection `json:"combos"`
	SeatsTotal    int64                    `json:"seats_total"`
	CombosTotal   int64                    `json:"combos_total"`
	Total         int64                    `json:"total"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

type SubmitResponse struct {
	Booking *entity.Booking `json:"booking"`
	Total   int64           `json:"total"`
	Session SessionResponse `json:"session"`
}

func SessionToResponse(s session.Session) SessionResponse {
	d := s.Draft
	return SessionResponse{
		ID:            s.ID,
		Generation:    d.Generation,
		Step:          int(d.Step),
		StepName:      d.Step.String(),
		CustomerPhone: d.CustomerPhone,
		CustomerName:  d.CustomerName,
		Customer:      d.Customer,
		WalkIn:        d.WalkIn,
		Movie:         d.Movie,
		Showtimes:     d.Showtimes,
		Showtime:      d.Showtime,
		Seats:         d.Seats,
		Combos:        d.ComboList(),
		SeatsTotal:    d.SeatsTotal(),
		CombosTotal:   d.CombosTotal(),
		Total:         d.Total(),
		UpdatedAt:     s.UpdatedAt,
	}
}
