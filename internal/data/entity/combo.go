package entity

// Combo is a food and beverage bundle sold alongside tickets.
type Combo struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	Price       int64  `json:"price" db:"price"`
	IsActive    bool   `json:"is_active" db:"is_active"`
}
