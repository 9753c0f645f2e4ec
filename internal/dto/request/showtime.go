package request

type ShowtimeQuery struct {
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Cinema string `json:"cinema" validate:"omitempty,max=64"`
}
