package entity

type MovieSummary struct {
	ID                string   `json:"id" db:"id"`
	Title             string   `json:"title" db:"title"`
	DurationInMinutes int      `json:"duration_in_minutes" db:"duration_in_minutes"`
	Genres            []string `json:"genres,omitempty" db:"genres"`
	PosterURL         string   `json:"poster_url,omitempty" db:"poster_url"`
	AgeRating         string   `json:"age_rating,omitempty" db:"age_rating"`
}
