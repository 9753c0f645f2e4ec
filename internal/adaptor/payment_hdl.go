package adaptor

import (
	"net/http"

	"cinema-ticketing/internal/payment"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// Relay handles GET /payment-result, the return URL registered with VNPay.
// The browser is sent on to the callback page with the query untouched.
func (h *PaymentHandler) Relay(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, payment.RelayURL(r.URL.Query()), http.StatusFound)
}

// VerifyCallback handles GET /api/payment/vnpay-callback
func (h *PaymentHandler) VerifyCallback(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Verify(r.Context(), r.URL.Query())
	if err != nil {
		handleServiceError(w, h.log, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, result.Message, result)
}
