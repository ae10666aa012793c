package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/mail"
	"github.com/spec-kit/account-service/internal/service"
)

// NotifiedEvents lists the events that produce mail.
var NotifiedEvents = []events.EventType{
	events.EventUserRegistered,
	events.EventEmailVerificationRequested,
	events.EventPasswordResetRequested,
	events.EventPasswordChanged,
}

// StartNotificationWorker subscribes mail delivery to account events.
func StartNotificationWorker(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger, appName string) *service.NotificationService {
	if dispatcher == nil || mailer == nil {
		logger.Warn("notification worker disabled")
		return nil
	}

	notifications := service.NewNotificationService(dispatcher, mailer, logger, appName)
	notifications.RegisterHandlers()

	for _, eventType := range NotifiedEvents {
		logger.Debug("notification handler registered",
			zap.String("event_type", string(eventType)),
			zap.Int("handlers", dispatcher.HandlerCount(eventType)))
	}
	return notifications
}
