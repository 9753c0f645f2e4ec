package adaptor

import (
	"context"
	"net/http"

	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CounterHandler struct {
	service usecase.CounterService
	log     *zap.Logger
}

func NewCounterHandler(service usecase.CounterService, log *zap.Logger) *CounterHandler {
	return &CounterHandler{
		service: service,
		log:     log.With(zap.String("handler", "counter")),
	}
}

// staff returns the authenticated staff id, answering 401 when missing.
func (h *CounterHandler) staff(w http.ResponseWriter, r *http.Request) (string, bool) {
	staffID, ok := utils.GetStaffIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return "", false
	}
	return staffID, true
}

// Start handles POST /api/counter/sessions
func (h *CounterHandler) Start(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Start(r.Context(), staffID)
	if err != nil {
		handleServiceError(w, h.log, err, "start session")
		return
	}

	utils.ResponseCreated(w, "success", resp)
}

// Get handles GET /api/counter/sessions/{id}
func (h *CounterHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.sessionCall(w, r, "get session", h.service.Get)
}

// SubmitCustomer handles POST /api/counter/sessions/{id}/customer
func (h *CounterHandler) SubmitCustomer(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	var req request.CustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.SubmitCustomer(r.Context(), staffID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "submit customer")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// ListMovies handles GET /api/counter/sessions/{id}/movies
func (h *CounterHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	movies, err := h.service.ListMovies(r.Context(), staffID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list movies")
		return
	}

	utils.ResponseSuccess(w, "success", movies)
}

// ChooseMovie handles POST /api/counter/sessions/{id}/movie
func (h *CounterHandler) ChooseMovie(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	var req request.ChooseMovieRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.ChooseMovie(r.Context(), staffID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "choose movie")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// ChooseShowtime handles POST /api/counter/sessions/{id}/showtime
func (h *CounterHandler) ChooseShowtime(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	var req request.ChooseShowtimeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.ChooseShowtime(r.Context(), staffID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "choose showtime")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// ToggleSeat handles POST /api/counter/sessions/{id}/seats/toggle
func (h *CounterHandler) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	var req request.ToggleSeatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.ToggleSeat(r.Context(), staffID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "toggle seat")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// ListCombos handles GET /api/counter/sessions/{id}/combos
func (h *CounterHandler) ListCombos(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	combos, err := h.service.ListCombos(r.Context(), staffID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "list combos")
		return
	}

	utils.ResponseSuccess(w, "success", combos)
}

// SetCombo handles PUT /api/counter/sessions/{id}/combos
func (h *CounterHandler) SetCombo(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	var req request.SetComboRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.SetCombo(r.Context(), staffID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "set combo")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// Next handles POST /api/counter/sessions/{id}/next
func (h *CounterHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.sessionCall(w, r, "next step", h.service.Next)
}

// Back handles POST /api/counter/sessions/{id}/back
func (h *CounterHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.sessionCall(w, r, "previous step", h.service.Back)
}

// Reset handles POST /api/counter/sessions/{id}/reset
func (h *CounterHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.sessionCall(w, r, "reset session", h.service.Reset)
}

// Submit handles POST /api/counter/sessions/{id}/submit
func (h *CounterHandler) Submit(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Submit(r.Context(), staffID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "submit booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", resp)
}

// Delete handles DELETE /api/counter/sessions/{id}
func (h *CounterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), staffID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "close session")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func (h *CounterHandler) sessionCall(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	call func(ctx context.Context, staffID, sessionID string) (*response.SessionResponse, error),
) {
	staffID, ok := h.staff(w, r)
	if !ok {
		return
	}

	resp, err := call(r.Context(), staffID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}
