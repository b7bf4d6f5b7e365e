package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/config"
	"github.com/spec-kit/grocery-service/internal/domain"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())
	calls := 0
	dispatcher.Subscribe(EventOrderCreated, func(context.Context, Event) error {
		calls++
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventOrderCreated, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventOrderCreated}))
	assert.Equal(t, 2, calls)
}

func TestKafkaPublisherWritesKeyedMessages(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewKafkaPublisher(writer, zap.NewNop())

	event := Event{
		Type:      EventOrderStatusChanged,
		OrderID:   "o-1",
		OrderCode: "PED-ABC-1234",
		Payload:   OrderStatusChangedPayload{OldStatus: domain.OrderStatusPaid, NewStatus: domain.OrderStatusPreparing},
	}
	require.NoError(t, publisher.Handle(context.Background(), event))

	require.Len(t, writer.messages, 1)
	assert.Equal(t, "order-PED-ABC-1234", string(writer.messages[0].Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &decoded))
	assert.Equal(t, "order_status_changed", decoded["type"])
}

func TestKafkaWriterUsesShortBatches(t *testing.T) {
	writer := NewKafkaWriter(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "orders"})
	assert.Equal(t, 10*time.Millisecond, writer.BatchTimeout)
	assert.Equal(t, kafkaWriteTimeout, writer.WriteTimeout)
	assert.Equal(t, "orders", writer.Topic)
}

func TestKafkaPublisherSurfacesWriteErrors(t *testing.T) {
	publisher := NewKafkaPublisher(&recordingWriter{err: errors.New("broker down")}, zap.NewNop())
	err := publisher.Handle(context.Background(), Event{Type: EventOrderCreated, OrderID: "o-1"})
	assert.ErrorContains(t, err, "broker down")
}

func TestActorFrom(t *testing.T) {
	assert.Equal(t, domain.BackingNone, ActorFrom(nil).Kind)

	actor := ActorFrom(domain.CustomerIdentity{Customer: domain.Customer{ID: "c1"}})
	assert.Equal(t, domain.BackingCustomerRecord, actor.Kind)
	require.NotNil(t, actor.ID)
	assert.Equal(t, "c1", *actor.ID)
}
