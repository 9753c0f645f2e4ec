package entity

// Customer is an account matched by phone number at the counter.
type Customer struct {
	ID       string `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
	Phone    string `json:"phone" db:"phone"`
	Email    string `json:"email,omitempty" db:"email"`
}
