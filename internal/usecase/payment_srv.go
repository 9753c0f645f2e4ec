package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/payment"
	"cinema-ticketing/pkg/metrics"

	"go.uber.org/zap"
)

var ErrMissingCallbackParams = errors.New("missing payment callback parameters")

type PaymentService interface {
	// Verify asks the backend to check a VNPay return and turns its answer
	// into a terminal Result.
	Verify(ctx context.Context, query url.Values) (*payment.Result, error)
}

type paymentService struct {
	verifier gateway.PaymentVerifier
	metrics  *metrics.Metrics
	timeout  time.Duration
	log      *zap.Logger
}

func NewPaymentService(deps Deps, log *zap.Logger) PaymentService {
	return &paymentService{
		verifier: deps.Backend.Payments,
		metrics:  deps.Metrics,
		timeout:  deps.Timeout,
		log:      log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) Verify(ctx context.Context, query url.Values) (*payment.Result, error) {
	cb := payment.ParseCallback(query)
	if len(cb.Params) == 0 {
		s.log.Warn("Payment callback without parameters")
		return nil, ErrMissingCallbackParams
	}
	if cb.TxnRef == "" {
		// The backend still decides; only the redirect target is unknown.
		s.log.Warn("Payment callback without transaction reference", zap.Int("params", len(cb.Params)))
	}

	result := payment.NewResult(cb)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	verification, err := s.verifier.VerifyPaymentCallback(callCtx, cb.Params)
	cancel()

	switch {
	case err != nil:
		s.log.Error("Payment verification failed",
			zap.String("booking_id", cb.BookingID),
			zap.String("txn_ref", cb.TxnRef),
			zap.Error(err),
		)
		result = result.Fail("")
	case verification.Success:
		s.log.Info("Payment verified",
			zap.String("booking_id", cb.BookingID),
			zap.String("txn_ref", cb.TxnRef),
		)
		result = result.Succeed()
	default:
		s.log.Warn("Payment rejected",
			zap.String("booking_id", cb.BookingID),
			zap.String("txn_ref", cb.TxnRef),
			zap.String("reason", verification.Message),
		)
		result = result.Fail(verification.Message)
	}

	s.metrics.PaymentVerifications.WithLabelValues(string(result.Status)).Inc()
	return &result, nil
}
