package adaptor

import (
	"net/http"

	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type ShowtimeHandler struct {
	service usecase.ShowtimeService
	log     *zap.Logger
}

func NewShowtimeHandler(service usecase.ShowtimeService, log *zap.Logger) *ShowtimeHandler {
	return &ShowtimeHandler{
		service: service,
		log:     log.With(zap.String("handler", "showtime")),
	}
}

// Browse handles GET /api/showtimes?date=YYYY-MM-DD&cinema=all|{id}
func (h *ShowtimeHandler) Browse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.ShowtimeQuery{
		Date:   query.Get("date"),
		Cinema: query.Get("cinema"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.Browse(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "browse showtimes")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
