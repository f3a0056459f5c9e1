// Package notifier publishes account notifications onto the queue.
// Delivery itself happens in the notification-sender binary; the HTTP
// app only enqueues.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/teamplaymate/coaching-backend/internal/lib/rabbitmq"
	"github.com/teamplaymate/coaching-backend/internal/models"
)

// Service wraps the AMQP channel for notification publishing.
type Service struct {
	ch  *amqp.Channel
	log *slog.Logger
}

// New creates a notifier publishing on ch.
func New(ch *amqp.Channel, log *slog.Logger) *Service {
	return &Service{
		ch:  ch,
		log: log,
	}
}

// PublishWelcome enqueues the welcome email for a new account.
func (s *Service) PublishWelcome(_ context.Context, email, name string) error {
	return rabbitmq.PublishMessage(s.ch, rabbitmq.Exchange, rabbitmq.RoutingKeyWelcome,
		models.WelcomeMessage{Email: email, Name: name})
}

// PublishResetCode enqueues the password-reset email carrying the
// plaintext code. An error here means the caller must roll the reset
// ticket back.
func (s *Service) PublishResetCode(_ context.Context, email, name, code string) error {
	return rabbitmq.PublishMessage(s.ch, rabbitmq.Exchange, rabbitmq.RoutingKeyPasswordReset,
		models.PasswordResetMessage{Email: email, Name: name, Code: code})
}
