package worker

import (
	"context"

	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when an
// external forwarder is configured, starts it and subscribes it to every
// order event.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notificationService *service.NotificationService, forwarder *EventForwarder) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if forwarder != nil && dispatcher != nil {
		forwarder.Start(ctx)
		forwarder.Register(dispatcher)
	}
}
