package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/grocery-service/internal/config"
	"github.com/spec-kit/grocery-service/internal/events"
)

// NotificationService turns order and account events into customer and
// operations notifications. No mail or webhook is delivered; each channel
// writes a structured log entry describing the message.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderCreated, n.handleOrderCreated)
	n.dispatcher.Subscribe(events.EventOrderStatusChanged, n.handleOrderStatusChanged)
	n.dispatcher.Subscribe(events.EventOrderCourierAssigned, n.handleCourierAssigned)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleOrderCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderCreated", zap.String("order_code", event.OrderCode), zap.Any("payload", event.Payload))
	n.logEmailNotification(ctx, event, "")
	n.logWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderStatusChanged", zap.String("order_code", event.OrderCode), zap.Any("payload", event.Payload))
	n.logEmailNotification(ctx, event, "")
	n.logWebhookNotification(ctx, event)
	return nil
}

func (n *NotificationService) handleCourierAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderCourierAssigned", zap.String("order_code", event.OrderCode), zap.Any("payload", event.Payload))
	n.logWebhookNotification(ctx, event)
	return nil
}

// handlePasswordResetRequested records the reset mail. The token itself
// never reaches the log.
func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PasswordResetRequested",
		zap.String("kind", string(payload.Kind)),
		zap.Time("expires_at", payload.ExpiresAt))
	n.logEmailNotification(ctx, event, payload.Email)
	return nil
}

// logEmailNotification logs the mail an event would send. It is a no-op
// until NOTIFY_EMAIL_FROM is set.
func (n *NotificationService) logEmailNotification(_ context.Context, event events.Event, recipient string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	fields := []zap.Field{
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)),
	}
	if recipient != "" {
		fields = append(fields, zap.String("to", recipient))
	}
	if event.OrderCode != "" {
		fields = append(fields, zap.String("order_code", event.OrderCode))
	}
	n.logger.Info("email notification", fields...)
}

// logWebhookNotification logs the webhook call an event would make. It is a
// no-op until NOTIFY_WEBHOOK_URL is set.
func (n *NotificationService) logWebhookNotification(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Info("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("order_code", event.OrderCode),
		zap.String("event_type", string(event.Type)))
}
