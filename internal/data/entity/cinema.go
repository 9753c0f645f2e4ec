package entity

type CinemaSummary struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	City    string `json:"city,omitempty" db:"city"`
	Address string `json:"address,omitempty" db:"address"`
}
