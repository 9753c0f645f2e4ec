// Package booking holds the counter booking wizard: a Draft value that moves
// through six steps via pure transitions. Every transition returns a new
// Draft and never mutates its receiver, so a rejected transition leaves the
// caller holding the unchanged original.
package booking

import (
	"maps"
	"slices"
	"strings"

	"cinema-ticketing/internal/data/entity"
)

// Step is the current wizard stage.
type Step int

const (
	StepIdentifyCustomer Step = iota + 1
	StepSelectMovie
	StepSelectShowtime
	StepSelectSeats
	StepSelectCombos
	StepConfirm
)

const (
	MaxSeats       = 10
	MinPhoneLength = 10
)

var stepNames = map[Step]string{
	StepIdentifyCustomer: "identify_customer",
	StepSelectMovie:      "select_movie",
	StepSelectShowtime:   "select_showtime",
	StepSelectSeats:      "select_seats",
	StepSelectCombos:     "select_combos",
	StepConfirm:          "confirm",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// SeatSelection is a seat picked for the booking; Price is fixed when the
// seat is picked.
type SeatSelection struct {
	Row    string          `json:"row"`
	Number int             `json:"number"`
	Type   entity.SeatType `json:"type"`
	Price  int64           `json:"price"`
}

func (s SeatSelection) key() seatKey {
	return seatKey{row: strings.ToUpper(s.Row), number: s.Number}
}

type seatKey struct {
	row    string
	number int
}

// ComboSelection is a combo line with the name and price taken when it was
// added. Quantity is always positive.
type ComboSelection struct {
	ComboID  string `json:"combo_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Draft is one session's in-progress booking.
type Draft struct {
	Generation    uint64                    `json:"generation"`
	Step          Step                      `json:"step"`
	CustomerPhone string                    `json:"customer_phone"`
	CustomerName  string                    `json:"customer_name,omitempty"`
	Customer      *entity.Customer          `json:"customer,omitempty"`
	WalkIn        bool                      `json:"walk_in"`
	Movie         *entity.MovieSummary      `json:"movie,omitempty"`
	Showtimes     []entity.Showtime         `json:"showtimes,omitempty"`
	Showtime      *entity.Showtime          `json:"showtime,omitempty"`
	Seats         []SeatSelection           `json:"seats"`
	Combos        map[string]ComboSelection `json:"combos"`
}

func NewDraft() Draft {
	return Draft{
		Step:   StepIdentifyCustomer,
		Seats:  []SeatSelection{},
		Combos: map[string]ComboSelection{},
	}
}

// Identified reports whether the customer step has been completed, either
// with a matched account or as a walk-in.
func (d Draft) Identified() bool {
	return d.Customer != nil || d.WalkIn
}

func (d Draft) HasSeat(row string, number int) bool {
	k := SeatSelection{Row: row, Number: number}.key()
	return slices.ContainsFunc(d.Seats, func(s SeatSelection) bool { return s.key() == k })
}

// ComboList returns the combo lines ordered by combo ID.
func (d Draft) ComboList() []ComboSelection {
	ids := slices.Sorted(maps.Keys(d.Combos))
	out := make([]ComboSelection, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.Combos[id])
	}
	return out
}

// SeatsTotal is the sum of the seat price snapshots.
func (d Draft) SeatsTotal() int64 {
	var total int64
	for _, s := range d.Seats {
		total += s.Price
	}
	return total
}

func (d Draft) CombosTotal() int64 {
	var total int64
	for _, c := range d.Combos {
		total += c.Price * int64(c.Quantity)
	}
	return total
}

func (d Draft) Total() int64 {
	return d.SeatsTotal() + d.CombosTotal()
}

// clone copies the draft deeply enough that the copy can be changed without
// touching the receiver's seats, combos or candidate showtimes.
func (d Draft) clone() Draft {
	c := d
	c.Seats = slices.Clone(d.Seats)
	if c.Seats == nil {
		c.Seats = []SeatSelection{}
	}
	c.Combos = maps.Clone(d.Combos)
	if c.Combos == nil {
		c.Combos = map[string]ComboSelection{}
	}
	c.Showtimes = slices.Clone(d.Showtimes)
	return c
}
