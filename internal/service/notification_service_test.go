package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/mail"
)

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestNotificationServiceSendsLinks(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &fakeMailer{}
	NewNotificationService(dispatcher, mailer, zaptest.NewLogger(t), "Accounts").RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventEmailVerificationRequested,
		Recipient: events.Recipient{UserID: "u-1", Name: "<Ann>", Email: "ann@example.com"},
		Payload:   events.LinkPayload{URL: "http://x.test/verify?token=a&b", ExpiresAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To[0] != "ann@example.com" || msg.Subject != "Verify your email" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.HTML, "token=a&amp;b") || !strings.Contains(msg.HTML, "&lt;Ann&gt;") {
		t.Fatalf("body not escaped: %s", msg.HTML)
	}
}

func TestNotificationServiceRejectsMissingLink(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &fakeMailer{}
	NewNotificationService(dispatcher, mailer, zaptest.NewLogger(t), "Accounts").RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventPasswordResetRequested,
		Recipient: events.Recipient{Email: "ann@example.com"},
	})
	if err == nil || len(mailer.sent) != 0 {
		t.Fatalf("expected payload error and no mail, got %v / %d", err, len(mailer.sent))
	}
}

func TestNotificationServicePropagatesMailErrors(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	boom := errors.New("smtp down")
	NewNotificationService(dispatcher, &fakeMailer{err: boom}, zaptest.NewLogger(t), "Accounts").RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventPasswordChanged,
		Recipient: events.Recipient{Email: "ann@example.com"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mail error, got %v", err)
	}
}
