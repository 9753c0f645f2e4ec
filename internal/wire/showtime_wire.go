package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireShowtime(
	r chi.Router,
	showtimeHandler *adaptor.ShowtimeHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// GET /api/showtimes - showtime browser (public)
	r.Get("/api/showtimes", showtimeHandler.Browse)
}
