package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/pkg/middleware"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCounter(
	r chi.Router,
	counterHandler *adaptor.CounterHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== STAFF ROUTES ====================
	r.Route("/api/counter/sessions", func(r chi.Router) {
		r.Use(middleware.JWTAuth(config.JWT.Secret, log))
		r.Use(middleware.RequireRole(log, utils.RoleStaff, utils.RoleAdmin))

		r.Post("/", counterHandler.Start)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", counterHandler.Get)
			r.Delete("/", counterHandler.Delete)

			r.Post("/customer", counterHandler.SubmitCustomer)
			r.Get("/movies", counterHandler.ListMovies)
			r.Post("/movie", counterHandler.ChooseMovie)
			r.Post("/showtime", counterHandler.ChooseShowtime)
			r.Post("/seats/toggle", counterHandler.ToggleSeat)
			r.Get("/combos", counterHandler.ListCombos)
			r.Put("/combos", counterHandler.SetCombo)

			r.Post("/next", counterHandler.Next)
			r.Post("/back", counterHandler.Back)
			r.Post("/reset", counterHandler.Reset)
			r.Post("/submit", counterHandler.Submit)
		})
	})
}
