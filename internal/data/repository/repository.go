package repository

import (
	"cinema-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Showtime ShowtimeRepository
	Cinema   CinemaRepository
	User     UserRepository
	Combo    ComboRepository
	Booking  BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Showtime: NewShowtimeRepository(db, log),
		Cinema:   NewCinemaRepository(db, log),
		User:     NewUserRepository(db, log),
		Combo:    NewComboRepository(db, log),
		Booking:  NewBookingRepository(db, log),
	}
}
