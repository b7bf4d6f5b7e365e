package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/config"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards order events to a Kafka topic.
type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

// kafkaWriteTimeout bounds a single produce call.
const kafkaWriteTimeout = 3 * time.Second

// NewKafkaWriter builds a writer for the configured brokers and topic. The
// batch timeout is kept short because events are written one at a time from
// the forwarding worker; the library default holds each write for a second.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           cfg.BatchTimeout(),
		WriteTimeout:           kafkaWriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaPublisher wraps writer.
func NewKafkaPublisher(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Handle writes one event. The key groups events of an order on one partition.
func (p *KafkaPublisher) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(MessageKey(event)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.Debug("order event published", zap.String("event_type", string(event.Type)), zap.String("order_code", event.OrderCode))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// MessageKey returns the partition key of an event, e.g. order-PED-XYZ.
func MessageKey(event Event) string {
	if event.OrderCode != "" {
		return fmt.Sprintf("order-%s", event.OrderCode)
	}
	return fmt.Sprintf("order-%s", event.OrderID)
}
