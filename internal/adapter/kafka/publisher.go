package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-backfill/internal/config"
	"github.com/couchcryptid/weather-backfill/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces forecast change events to a Kafka topic.
// It implements pipeline.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured forecast topic.
// Messages are keyed by zone and date so updates to one record stay ordered.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishForecast writes one forecast event.
func (p *Publisher) PublishForecast(ctx context.Context, event domain.ForecastEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish forecast %s: %w", event.Record.Key(), err)
	}
	p.logger.Debug("forecast event published", "key", event.Record.Key(), "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a forecast event into a Kafka message.
func serializeToMessage(event domain.ForecastEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Record.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "zone_id", Value: []byte(event.Record.ZoneID)},
			{Key: "forecast_date", Value: []byte(event.Record.ForecastDate)},
			{Key: "backfilled_at", Value: []byte(event.BackfilledAt.Format(time.RFC3339))},
		},
	}, nil
}
