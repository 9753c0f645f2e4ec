package events

import (
	"context"
	"fmt"

	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Publisher interface {
	PublishBookingCreated(ctx context.Context, event BookingCreated) error
	Close() error
}

// NewPublisher connects to the broker selected by config.Driver.
func NewPublisher(config utils.EventsConfig, log *zap.Logger) (Publisher, error) {
	switch config.Driver {
	case utils.EventsDriverRabbitMQ:
		return NewRabbitPublisher(config.RabbitMQURL, config.Queue, log)
	case utils.EventsDriverKafka:
		return NewKafkaPublisher(config.KafkaBrokers, config.Topic, log)
	case utils.EventsDriverNone, "":
		return NoopPublisher{log: log.With(zap.String("publisher", "noop"))}, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", config.Driver)
	}
}

// NoopPublisher drops events, logging them at debug level.
type NoopPublisher struct {
	log *zap.Logger
}

func (p NoopPublisher) PublishBookingCreated(ctx context.Context, event BookingCreated) error {
	if p.log != nil {
		p.log.Debug("Event dropped", zap.String("type", event.Type), zap.String("booking_id", event.BookingID))
	}
	return nil
}

func (p NoopPublisher) Close() error { return nil }
