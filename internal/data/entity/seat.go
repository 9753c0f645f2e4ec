package entity

import "fmt"

type SeatType string

const (
	SeatTypeStandard SeatType = "standard"
	SeatTypeVIP      SeatType = "vip"
	SeatTypeCouple   SeatType = "couple"
)

// Seat identifies a physical seat by row letter and number within the row.
type Seat struct {
	Row    string   `json:"row" db:"seat_row"`
	Number int      `json:"number" db:"seat_number"`
	Type   SeatType `json:"type" db:"seat_type"`
}

// Label renders the seat the way tickets print it, e.g. "A7".
func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}
