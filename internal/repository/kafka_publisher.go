package repository

import (
	"context"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
)

const (
	EventModelTrained      = "model_trained"
	EventForecastGenerated = "forecast_generated"
)

// producer is the subset of pkg/kafka.Producer the publisher needs.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// Envelope wraps every event written to the topic.
type Envelope struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// KafkaEventPublisher implements EventPublisher for Kafka.
type KafkaEventPublisher struct {
	producer producer
	topic    string
	now      func() time.Time
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

// NewKafkaEventPublisher creates Kafka publisher.
func NewKafkaEventPublisher(p producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, topic: topic, now: time.Now}
}

// PublishModelTrained is keyed by model ID.
func (p *KafkaEventPublisher) PublishModelTrained(ctx context.Context, ev models.ModelTrainedEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.ModelID), Envelope{
		Type: EventModelTrained,
		At:   p.now().UTC(),
		Data: ev,
	})
}

// PublishForecast is keyed by ticker so a ticker's forecasts stay ordered.
func (p *KafkaEventPublisher) PublishForecast(ctx context.Context, ev models.ForecastEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Ticker), Envelope{
		Type: EventForecastGenerated,
		At:   p.now().UTC(),
		Data: ev,
	})
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishModelTrained(context.Context, models.ModelTrainedEvent) error { return nil }
func (NopPublisher) PublishForecast(context.Context, models.ForecastEvent) error         { return nil }
func (NopPublisher) Close() error                                                        { return nil }
