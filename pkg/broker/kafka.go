// Package broker publishes domain events to Kafka.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Message is one event to publish.
type Message struct {
	Topic   string
	Key     string
	ID      string
	Type    string
	Payload interface{}
}

// Publisher sends messages to Kafka synchronously.
type Publisher struct {
	producer sarama.SyncProducer
}

// NewPublisher connects a sync producer to brokers.
func NewPublisher(brokers []string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("broker: create kafka producer: %w", err)
	}
	logger.Info("kafka publisher initialized", "brokers", brokers)
	return NewPublisherWith(producer), nil
}

// NewPublisherWith wraps an existing producer, e.g. a sarama mock.
func NewPublisherWith(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer}
}

// Publish encodes m.Payload as JSON and sends it with event and trace
// headers.
func (p *Publisher) Publish(ctx context.Context, m Message) error {
	ctx, span := otel.Tracer("storefront/broker").Start(ctx, "kafka.publish "+m.Type,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", m.Topic),
			attribute.String("event.type", m.Type),
			attribute.String("event.id", m.ID),
		),
	)
	defer span.End()

	body, err := json.Marshal(m.Payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal event")
		return fmt.Errorf("broker: marshal %s: %w", m.Type, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(m.Type)},
		{Key: []byte("event_id"), Value: []byte(m.ID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   m.Topic,
		Key:     sarama.StringEncoder(m.Key),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send message")
		metrics.EventsPublished.WithLabelValues("kafka", "error").Inc()
		return fmt.Errorf("broker: send %s to %s: %w", m.Type, m.Topic, err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	metrics.EventsPublished.WithLabelValues("kafka", "ok").Inc()
	logger.WithCtx(ctx).Debug("event published",
		"event_id", m.ID, "event_type", m.Type, "topic", m.Topic,
		"partition", partition, "offset", offset,
	)
	return nil
}

// Close closes the producer.
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
