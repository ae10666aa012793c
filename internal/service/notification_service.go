package service

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/mail"
)

// NotificationService turns account events into outbound mail.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	logger     *zap.Logger
	appName    string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, logger *zap.Logger, appName string) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		appName:    appName,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventEmailVerificationRequested, n.handleVerificationRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.Recipient.UserID))
	body := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to %s.</p>",
		html.EscapeString(event.Recipient.Name), html.EscapeString(n.appName))
	return n.send(ctx, event, "Welcome to "+n.appName, body)
}

func (n *NotificationService) handleVerificationRequested(ctx context.Context, event events.Event) error {
	link, ok := event.Payload.(events.LinkPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("EmailVerificationRequested", zap.String("user_id", event.Recipient.UserID))
	body := fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">Verify your email address</a>. The link expires at %s.</p>`,
		html.EscapeString(event.Recipient.Name), html.EscapeString(link.URL), link.ExpiresAt.UTC().Format("15:04 MST"))
	return n.send(ctx, event, "Verify your email", body)
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	link, ok := event.Payload.(events.LinkPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("PasswordResetRequested", zap.String("user_id", event.Recipient.UserID))
	body := fmt.Sprintf(`<p><a href="%s">Reset your password</a></p>`, html.EscapeString(link.URL))
	return n.send(ctx, event, "Password reset", body)
}

func (n *NotificationService) handlePasswordChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("PasswordChanged", zap.String("user_id", event.Recipient.UserID))
	return n.send(ctx, event, "Your password was changed", "<p>Your password was changed.</p>")
}

func (n *NotificationService) send(ctx context.Context, event events.Event, subject, body string) error {
	if n.mailer == nil || event.Recipient.Email == "" {
		return nil
	}
	err := n.mailer.Send(ctx, mail.Message{
		To:      []string{event.Recipient.Email},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		n.logger.Error("send email failed",
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.Recipient.UserID),
			zap.Error(err))
	}
	return err
}
