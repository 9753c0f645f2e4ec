package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/pkg/middleware"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Callbacks come from the open internet, so they are rate limited per IP.
	limiter := middleware.NewRateLimiter(config.RateLimit)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, log))

		// GET /payment-result - VNPay return URL, relayed to the callback page
		r.Get("/payment-result", paymentHandler.Relay)

		// GET /api/payment/vnpay-callback - verify the VNPay return with the backend
		r.Get("/api/payment/vnpay-callback", paymentHandler.VerifyCallback)
	})
}
