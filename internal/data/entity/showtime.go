package entity

import "time"

type ShowtimeStatus string

const (
	ShowtimeStatusScheduled ShowtimeStatus = "scheduled"
	ShowtimeStatusOngoing   ShowtimeStatus = "ongoing"
	ShowtimeStatusCompleted ShowtimeStatus = "completed"
	ShowtimeStatusCancelled ShowtimeStatus = "cancelled"
)

type Room struct {
	Name     string `json:"name" db:"room_name"`
	Capacity int    `json:"capacity" db:"room_capacity"`
}

// Showtime is the normalized form of a screening, whatever shape the backend
// returned it in. Movie and Cinema are nil when the upstream record lacked them.
type Showtime struct {
	ID                  string         `json:"id" db:"id"`
	Movie               *MovieSummary  `json:"movie,omitempty"`
	Cinema              *CinemaSummary `json:"cinema,omitempty"`
	StartTime           time.Time      `json:"start_time" db:"start_time"`
	Room                Room           `json:"room"`
	Status              ShowtimeStatus `json:"status" db:"status"`
	IsActive            bool           `json:"is_active" db:"is_active"`
	AvailableSeatsCount int            `json:"available_seats_count" db:"available_seats_count"`
	BasePrice           int64          `json:"base_price" db:"base_price"`
}

// Bookable reports whether new reservations may be taken for the showtime.
func (s Showtime) Bookable() bool {
	if !s.IsActive {
		return false
	}
	return s.Status != ShowtimeStatusCancelled && s.Status != ShowtimeStatusCompleted
}

func (s Showtime) MovieID() string {
	if s.Movie == nil {
		return ""
	}
	return s.Movie.ID
}

func (s Showtime) CinemaID() string {
	if s.Cinema == nil {
		return ""
	}
	return s.Cinema.ID
}
