package gateway

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"cinema-ticketing/internal/data/entity"
)

// The backend has returned references both as bare ID strings and as
// populated objects, IDs as "_id" or "id", numbers as numbers or strings,
// and genres as a list or a comma separated string. The raw* types accept
// every variant seen so far.

type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = flexInt(math.Round(f))
	return nil
}

type flexStrings []string

func (fs *flexStrings) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*fs = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*fs = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*fs = append(*fs, part)
		}
	}
	return nil
}

type rawID struct {
	ID    string `json:"id"`
	OID   string `json:"_id"`
	Value string `json:"-"`
}

func (r rawID) String() string {
	switch {
	case r.Value != "":
		return r.Value
	case r.OID != "":
		return r.OID
	default:
		return r.ID
	}
}

type rawMovie struct {
	rawID
	Title     string      `json:"title"`
	Duration  flexInt     `json:"duration"`
	Genres    flexStrings `json:"genres"`
	Genre     flexStrings `json:"genre"`
	Poster    string      `json:"poster"`
	PosterURL string      `json:"posterUrl"`
	AgeRating string      `json:"ageRating"`
	Rated     string      `json:"rated"`
}

type rawCinema struct {
	rawID
	Name     string `json:"name"`
	City     string `json:"city"`
	Address  string `json:"address"`
	Location *struct {
		City    string `json:"city"`
		Address string `json:"address"`
	} `json:"location"`
}

type rawRoom struct {
	Name     string  `json:"name"`
	Capacity flexInt `json:"capacity"`
}

type rawShowtime struct {
	rawID
	Movie          json.RawMessage `json:"movieId"`
	MovieAlt       json.RawMessage `json:"movie"`
	Cinema         json.RawMessage `json:"cinemaId"`
	CinemaAlt      json.RawMessage `json:"cinema"`
	StartTime      time.Time       `json:"startTime"`
	Room           json.RawMessage `json:"room"`
	RoomName       string          `json:"roomName"`
	Status         string          `json:"status"`
	IsActive       *bool           `json:"isActive"`
	AvailableSeats flexInt         `json:"availableSeats"`
	AvailableCount flexInt         `json:"availableSeatsCount"`
	Price          flexInt         `json:"price"`
}

type rawCustomer struct {
	rawID
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type rawCombo struct {
	rawID
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       flexInt `json:"price"`
	IsActive    *bool   `json:"isActive"`
}

type rawBooking struct {
	rawID
	BookingCode  string    `json:"bookingCode"`
	Showtime     rawRef    `json:"showtimeId"`
	BookingType  string    `json:"bookingType"`
	Phone        string    `json:"customerPhone"`
	CustomerName string    `json:"customerName"`
	TotalAmount  flexInt   `json:"totalAmount"`
	TotalPrice   flexInt   `json:"totalPrice"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// rawRef is an ID that may arrive as a string or as a populated object.
type rawRef struct{ rawID }

func (r *rawRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.Value)
	}
	return json.Unmarshal(b, &r.rawID)
}

// decodeRef returns the object form of a reference, or only its ID when the
// backend did not populate it. ok is false when the field is absent.
func decodeRef[T any](raw json.RawMessage, idOnly func(string) T) (T, bool) {
	var zero T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return zero, false
	}
	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil || id == "" {
			return zero, false
		}
		return idOnly(id), true
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false
	}
	return v, true
}

func firstRaw(candidates ...json.RawMessage) json.RawMessage {
	for _, c := range candidates {
		if len(bytes.TrimSpace(c)) > 0 && string(bytes.TrimSpace(c)) != "null" {
			return c
		}
	}
	return nil
}

func firstString(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

func (m rawMovie) toEntity() *entity.MovieSummary {
	id := m.String()
	if id == "" {
		return nil
	}
	genres := []string(m.Genres)
	if len(genres) == 0 {
		genres = m.Genre
	}
	return &entity.MovieSummary{
		ID:                id,
		Title:             m.Title,
		DurationInMinutes: int(m.Duration),
		Genres:            genres,
		PosterURL:         firstString(m.PosterURL, m.Poster),
		AgeRating:         firstString(m.AgeRating, m.Rated),
	}
}

func (c rawCinema) toEntity() *entity.CinemaSummary {
	id := c.String()
	if id == "" {
		return nil
	}
	out := &entity.CinemaSummary{ID: id, Name: c.Name, City: c.City, Address: c.Address}
	if c.Location != nil {
		out.City = firstString(out.City, c.Location.City)
		out.Address = firstString(out.Address, c.Location.Address)
	}
	return out
}

func (s rawShowtime) toEntity() entity.Showtime {
	out := entity.Showtime{
		ID:                  s.String(),
		StartTime:           s.StartTime,
		Status:              entity.ShowtimeStatus(strings.ToLower(s.Status)),
		IsActive:            s.IsActive == nil || *s.IsActive,
		AvailableSeatsCount: int(s.AvailableCount),
		BasePrice:           int64(s.Price),
	}
	if out.AvailableSeatsCount == 0 {
		out.AvailableSeatsCount = int(s.AvailableSeats)
	}
	if out.Status == "" {
		out.Status = entity.ShowtimeStatusScheduled
	}

	if m, ok := decodeRef(firstRaw(s.Movie, s.MovieAlt), func(id string) rawMovie {
		return rawMovie{rawID: rawID{Value: id}}
	}); ok {
		out.Movie = m.toEntity()
	}
	if c, ok := decodeRef(firstRaw(s.Cinema, s.CinemaAlt), func(id string) rawCinema {
		return rawCinema{rawID: rawID{Value: id}}
	}); ok {
		out.Cinema = c.toEntity()
	}
	if r, ok := decodeRef(s.Room, func(name string) rawRoom { return rawRoom{Name: name} }); ok {
		out.Room = entity.Room{Name: r.Name, Capacity: int(r.Capacity)}
	}
	if out.Room.Name == "" {
		out.Room.Name = s.RoomName
	}

	return out
}

func (c rawCustomer) toEntity() *entity.Customer {
	return &entity.Customer{
		ID:       c.String(),
		FullName: firstString(c.FullName, c.Name),
		Phone:    c.Phone,
		Email:    c.Email,
	}
}

func (c rawCombo) toEntity() entity.Combo {
	return entity.Combo{
		ID:          c.String(),
		Name:        c.Name,
		Description: c.Description,
		Price:       int64(c.Price),
		IsActive:    c.IsActive == nil || *c.IsActive,
	}
}

func (b rawBooking) toEntity() *entity.Booking {
	total := int64(b.TotalAmount)
	if total == 0 {
		total = int64(b.TotalPrice)
	}
	return &entity.Booking{
		ID:            b.String(),
		OrderID:       b.BookingCode,
		ShowtimeID:    b.Showtime.String(),
		Channel:       entity.BookingChannel(b.BookingType),
		CustomerPhone: b.Phone,
		CustomerName:  b.CustomerName,
		TotalPrice:    total,
		Status:        entity.BookingStatus(b.Status),
		CreatedAt:     b.CreatedAt,
	}
}

// decodeList accepts both `{"<key>": [...]}` and a bare array.
func decodeList[T any](body []byte, key string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var items []T
		err := json.Unmarshal(body, &items)
		return items, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[key]
	if !ok {
		raw, ok = envelope["data"]
	}
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	var items []T
	err := json.Unmarshal(raw, &items)
	return items, err
}

// decodeObject accepts both `{"<key>": {...}}` and the bare object.
func decodeObject[T any](body []byte, key string) (*T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[key]
	if !ok {
		raw, ok = envelope["data"]
	}
	if !ok {
		raw = body
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
