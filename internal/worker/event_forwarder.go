package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/observability"
)

const (
	defaultForwardBuffer  = 256
	defaultForwardTimeout = 5 * time.Second
)

// ErrForwardQueueFull is returned when an event is dropped because the
// external sink fell behind.
var ErrForwardQueueFull = errors.New("event forward queue full")

// EventSink receives forwarded events; *events.KafkaPublisher satisfies it.
type EventSink interface {
	Handle(ctx context.Context, event events.Event) error
}

// EventForwarder moves order events from the in-process dispatcher to an
// external sink on its own goroutine, so request handlers never wait on
// the broker. Events are dropped, not blocked on, once the queue is full.
type EventForwarder struct {
	sink    EventSink
	queue   chan events.Event
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewEventForwarder builds a forwarder with a queue of buffer events.
func NewEventForwarder(sink EventSink, buffer int, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *EventForwarder {
	if buffer <= 0 {
		buffer = defaultForwardBuffer
	}
	if timeout <= 0 {
		timeout = defaultForwardTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventForwarder{
		sink:    sink,
		queue:   make(chan events.Event, buffer),
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Register subscribes the forwarder to every order event.
func (f *EventForwarder) Register(dispatcher events.Dispatcher) {
	for _, eventType := range events.OrderEventTypes {
		dispatcher.Subscribe(eventType, f.Enqueue)
	}
}

// Enqueue hands an event to the worker without blocking.
func (f *EventForwarder) Enqueue(_ context.Context, event events.Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.stopped {
		return ErrForwardQueueFull
	}
	select {
	case f.queue <- event:
		return nil
	default:
		f.metrics.RecordEvent("event_forward_dropped")
		return ErrForwardQueueFull
	}
}

// Start runs the forwarding loop until Stop is called. ctx only carries
// values into the sink; cancellation does not abandon queued events.
func (f *EventForwarder) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for event := range f.queue {
			f.forward(base, event)
		}
	}()
}

func (f *EventForwarder) forward(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	if err := f.sink.Handle(ctx, event); err != nil {
		f.metrics.RecordEvent("event_forward_failed")
		f.logger.Warn("event forward failed",
			zap.String("event_type", string(event.Type)),
			zap.String("order_code", event.OrderCode),
			zap.Error(err))
		return
	}
	f.metrics.RecordEvent("event_forwarded")
}

// Stop closes the queue and waits for queued events to drain.
func (f *EventForwarder) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	close(f.queue)
	f.mu.Unlock()
	f.wg.Wait()
}
