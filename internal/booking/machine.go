package booking

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/showtime"
)

// SubmitPhone records the phone number entered at IdentifyCustomer. The step
// does not change: the caller looks the customer up and then calls
// ResolveCustomer.
func (d Draft) SubmitPhone(phone, name string) (Draft, error) {
	if d.Step != StepIdentifyCustomer {
		return d, fmt.Errorf("submit phone at %s: %w", d.Step, ErrWrongStep)
	}

	phone = normalizePhone(phone)
	if len(phone) < MinPhoneLength {
		return d, ErrInvalidPhone
	}

	next := d.clone()
	if next.CustomerPhone != phone {
		next.Customer = nil
		next.WalkIn = false
	}
	next.CustomerPhone = phone
	next.CustomerName = strings.TrimSpace(name)
	return next, nil
}

// ResolveCustomer completes IdentifyCustomer. A nil customer tags the draft
// as walk-in. Both outcomes advance to SelectMovie.
func (d Draft) ResolveCustomer(customer *entity.Customer) (Draft, error) {
	if d.Step != StepIdentifyCustomer {
		return d, fmt.Errorf("resolve customer at %s: %w", d.Step, ErrWrongStep)
	}
	if len(d.CustomerPhone) < MinPhoneLength {
		return d, ErrInvalidPhone
	}

	next := d.clone()
	next.Customer = customer
	next.WalkIn = customer == nil
	if customer != nil {
		next.CustomerName = ""
	}
	next.Step = StepSelectMovie
	return next, nil
}

// ChooseMovie selects a movie with the showtimes fetched for it. Only
// bookable showtimes are kept; if none remain the draft stays at SelectMovie.
// Picking a different movie than before drops the earlier showtime and seats.
func (d Draft) ChooseMovie(movie entity.MovieSummary, showtimes []entity.Showtime) (Draft, error) {
	if d.Step != StepSelectMovie {
		return d, fmt.Errorf("choose movie at %s: %w", d.Step, ErrWrongStep)
	}

	candidates := showtime.FilterBookable(showtimes)
	candidates = slices.DeleteFunc(candidates, func(st entity.Showtime) bool {
		return st.MovieID() != movie.ID
	})
	if len(candidates) == 0 {
		return d, fmt.Errorf("movie %s: %w", movie.ID, ErrNoShowtimesAvailable)
	}

	next := d.clone()
	if next.Movie == nil || next.Movie.ID != movie.ID {
		next.Showtime = nil
		next.Seats = []SeatSelection{}
	}
	m := movie
	next.Movie = &m
	next.Showtimes = candidates
	next.Step = StepSelectShowtime
	return next, nil
}

// ChooseShowtime selects the screening and advances to SelectSeats. Seat
// availability is checked seat by seat afterwards, not here. Switching to a
// different showtime drops seats picked for the previous one.
func (d Draft) ChooseShowtime(st entity.Showtime) (Draft, error) {
	if d.Step != StepSelectShowtime {
		return d, fmt.Errorf("choose showtime at %s: %w", d.Step, ErrWrongStep)
	}

	next := d.clone()
	if next.Showtime == nil || next.Showtime.ID != st.ID {
		next.Seats = []SeatSelection{}
	}
	s := st
	next.Showtime = &s
	next.Step = StepSelectSeats
	return next, nil
}

// FindShowtime looks a showtime up among the candidates of the chosen movie.
func (d Draft) FindShowtime(id string) (entity.Showtime, bool) {
	i := slices.IndexFunc(d.Showtimes, func(st entity.Showtime) bool { return st.ID == id })
	if i < 0 {
		return entity.Showtime{}, false
	}
	return d.Showtimes[i], true
}

// ToggleSeat removes the seat if it is already selected, otherwise adds it
// unless MaxSeats are already held.
func (d Draft) ToggleSeat(seat SeatSelection) (Draft, error) {
	if d.Step != StepSelectSeats {
		return d, fmt.Errorf("toggle seat at %s: %w", d.Step, ErrWrongStep)
	}
	seat.Row = strings.ToUpper(strings.TrimSpace(seat.Row))
	if seat.Row == "" || seat.Number < 1 || seat.Price < 0 {
		return d, ErrInvalidSeat
	}

	k := seat.key()
	if i := slices.IndexFunc(d.Seats, func(s SeatSelection) bool { return s.key() == k }); i >= 0 {
		next := d.clone()
		next.Seats = slices.Delete(next.Seats, i, i+1)
		return next, nil
	}

	if len(d.Seats) >= MaxSeats {
		return d, ErrSeatLimitExceeded
	}

	next := d.clone()
	next.Seats = append(next.Seats, seat)
	return next, nil
}

// SetComboQuantity upserts a combo line; quantity 0 removes it.
func (d Draft) SetComboQuantity(combo entity.Combo, quantity int) (Draft, error) {
	if d.Step != StepSelectCombos {
		return d, fmt.Errorf("set combo quantity at %s: %w", d.Step, ErrWrongStep)
	}
	if quantity < 0 || combo.ID == "" || combo.Price < 0 {
		return d, ErrInvalidQuantity
	}

	next := d.clone()
	if quantity == 0 {
		delete(next.Combos, combo.ID)
		return next, nil
	}

	next.Combos[combo.ID] = ComboSelection{
		ComboID:  combo.ID,
		Name:     combo.Name,
		Price:    combo.Price,
		Quantity: quantity,
	}
	return next, nil
}

// Next leaves the current step when its exit condition holds. It is how the
// wizard moves forward from SelectSeats and SelectCombos, and how it returns
// forward over steps already completed before a Back.
func (d Draft) Next() (Draft, error) {
	if err := d.exitCondition(); err != nil {
		return d, err
	}

	next := d.clone()
	next.Step++
	return next, nil
}

func (d Draft) exitCondition() error {
	switch d.Step {
	case StepIdentifyCustomer:
		if len(d.CustomerPhone) < MinPhoneLength || !d.Identified() {
			return ErrInvalidPhone
		}
	case StepSelectMovie:
		if d.Movie == nil || len(d.Showtimes) == 0 {
			return ErrNoShowtimesAvailable
		}
	case StepSelectShowtime:
		if d.Showtime == nil {
			return ErrNoShowtimeSelected
		}
	case StepSelectSeats:
		if len(d.Seats) == 0 {
			return ErrNoSeatsSelected
		}
	case StepSelectCombos:
	case StepConfirm:
		return fmt.Errorf("next at %s: %w", d.Step, ErrWrongStep)
	default:
		return fmt.Errorf("next at step %d: %w", int(d.Step), ErrWrongStep)
	}
	return nil
}

// Back returns to the previous step keeping everything entered so far.
func (d Draft) Back() (Draft, error) {
	if d.Step <= StepIdentifyCustomer {
		return d, ErrNoPreviousStep
	}

	next := d.clone()
	next.Step--
	return next, nil
}

// Reset clears the draft and bumps the generation so results of calls issued
// before the reset can be recognised and dropped.
func (d Draft) Reset() Draft {
	next := NewDraft()
	next.Generation = d.Generation + 1
	return next
}

// BookingRequest packages a confirmed draft for the booking backend.
func (d Draft) BookingRequest(channel entity.BookingChannel) (entity.NewBooking, error) {
	if d.Step != StepConfirm {
		return entity.NewBooking{}, fmt.Errorf("submit at %s: %w", d.Step, ErrWrongStep)
	}
	if len(d.Seats) == 0 {
		return entity.NewBooking{}, ErrNoSeatsSelected
	}
	if d.Showtime == nil {
		return entity.NewBooking{}, ErrNoShowtimeSelected
	}

	req := entity.NewBooking{
		ShowtimeID:    d.Showtime.ID,
		Seats:         make([]entity.BookedSeat, 0, len(d.Seats)),
		Combos:        make([]entity.BookedCombo, 0, len(d.Combos)),
		Channel:       channel,
		CustomerPhone: d.CustomerPhone,
	}
	for _, s := range d.Seats {
		req.Seats = append(req.Seats, entity.BookedSeat{Row: s.Row, Number: s.Number, Type: s.Type, Price: s.Price})
	}
	for _, c := range d.ComboList() {
		req.Combos = append(req.Combos, entity.BookedCombo{ComboID: c.ComboID, Name: c.Name, Quantity: c.Quantity, Price: c.Price})
	}

	switch {
	case d.Customer != nil:
		req.CustomerID = d.Customer.ID
	case d.WalkIn:
		req.CustomerName = d.CustomerName
		if req.CustomerName == "" {
			req.CustomerName = entity.WalkInCustomerName
		}
	}

	return req, nil
}

// RejectSeats handles a submission the backend refused because seats were
// taken in the meantime: the seat set is void and the wizard goes back to
// SelectSeats. Combos are kept.
func (d Draft) RejectSeats() Draft {
	next := d.clone()
	next.Seats = []SeatSelection{}
	next.Step = StepSelectSeats
	return next
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			return -1
		}
		return r
	}, phone)
}
