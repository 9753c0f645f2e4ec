package response

import (
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/showtime"
)

type DayOption struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Today   bool   `json:"today"`
}

type ShowtimeBrowseResponse struct {
	Date          string                  `json:"date"`
	Cinema        string                  `json:"cinema"`
	Days          []DayOption             `json:"days"`
	Cinemas       []entity.CinemaSummary  `json:"cinemas"`
	Movies        []showtime.MovieListing `json:"movies"`
	ShowtimeCount int                     `json:"showtime_count"`
}
