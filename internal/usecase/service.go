package usecase

import (
	"time"

	"cinema-ticketing/internal/events"
	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/session"
	"cinema-ticketing/pkg/metrics"

	"go.uber.org/zap"
)

// Deps is everything the services need from the outside world.
type Deps struct {
	Backend   gateway.Backend
	Sessions  session.Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Location  *time.Location
	// Timeout bounds each backend call made on behalf of a request.
	Timeout time.Duration
}

type Service struct {
	Showtime ShowtimeService
	Counter  CounterService
	Payment  PaymentService
}

func NewService(deps Deps, log *zap.Logger) *Service {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 15 * time.Second
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}

	return &Service{
		Showtime: NewShowtimeService(deps, log),
		Counter:  NewCounterService(deps, log),
		Payment:  NewPaymentService(deps, log),
	}
}
