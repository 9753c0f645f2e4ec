package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/session"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// Machine-readable codes carried in 409 responses so the client can tell the
// conflicts apart.
const (
	CodeSeatConflict = "SEAT_CONFLICT"
	CodeStale        = "STALE"
	CodeInFlight     = "IN_FLIGHT"
)

type Handler struct {
	Showtime *ShowtimeHandler
	Counter  *CounterHandler
	Payment  *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Showtime: NewShowtimeHandler(service.Showtime, log),
		Counter:  NewCounterHandler(service.Counter, log),
		Payment:  NewPaymentHandler(service.Payment, log),
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct tags. It
// writes the 400 response itself and reports whether the handler may go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case booking.IsValidation(err):
		log.Warn(operation+" validation failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseUnprocessable(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidDate),
		errors.Is(err, usecase.ErrMissingCallbackParams):
		log.Warn("Invalid input for "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrShowtimeNotFound),
		errors.Is(err, usecase.ErrComboNotFound),
		errors.Is(err, gateway.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err), zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, gateway.ErrSeatConflict):
		log.Warn(operation+" failed - seat taken", zap.Error(err), zap.String("operation", operation))
		utils.ResponseConflict(w, CodeSeatConflict, "One or more seats are no longer available. Please pick again.", nil)

	case errors.Is(err, usecase.ErrStaleResponse):
		log.Info(operation+" dropped - draft was reset", zap.String("operation", operation))
		utils.ResponseConflict(w, CodeStale, err.Error(), nil)

	case errors.Is(err, usecase.ErrOperationInFlight),
		errors.Is(err, session.ErrContended):
		log.Warn(operation+" rejected - already in progress", zap.Error(err), zap.String("operation", operation))
		utils.ResponseConflict(w, CodeInFlight, err.Error(), nil)

	case gateway.IsRetryable(err):
		log.Error(operation+" failed - backend unavailable", zap.Error(err), zap.String("operation", operation))
		utils.ResponseUnavailable(w, "Cinema backend is unavailable, please retry")

	case errors.Is(err, gateway.ErrRejected):
		log.Warn(operation+" rejected by backend", zap.Error(err), zap.String("operation", operation))
		utils.ResponseUnprocessable(w, err.Error(), nil)

	default:
		log.Error(operation+" failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
