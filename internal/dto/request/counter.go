package request

type CustomerRequest struct {
	Phone string `json:"phone" validate:"omitempty,phone,max=20"`
	Name  string `json:"name" validate:"omitempty,max=100"`
}

type ChooseMovieRequest struct {
	MovieID string `json:"movie_id" validate:"required"`
}

type ChooseShowtimeRequest struct {
	ShowtimeID string `json:"showtime_id" validate:"required"`
}

// ToggleSeatRequest carries the seat as the seat map showed it. A zero price
// means the showtime's base price.
type ToggleSeatRequest struct {
	Row    string `json:"row" validate:"required,seatrow"`
	Number int    `json:"number" validate:"required,gte=1,max=50"`
	Type   string `json:"type" validate:"omitempty,oneof=standard vip couple"`
	Price  int64  `json:"price" validate:"gte=0"`
}

type SetComboRequest struct {
	ComboID  string `json:"combo_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,max=20"`
}
