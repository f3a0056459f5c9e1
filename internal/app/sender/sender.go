// Package sender assembles the notification-sender worker: it consumes
// the notification queues and delivers the emails over SMTP.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/teamplaymate/coaching-backend/internal/config"
	"github.com/teamplaymate/coaching-backend/internal/lib/rabbitmq"
	"github.com/teamplaymate/coaching-backend/internal/lib/smtp"
	senderservice "github.com/teamplaymate/coaching-backend/internal/services/sender"
)

// App is the assembled sender worker.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New connects to the broker and wires the SMTP transport.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP)
	senderService := senderservice.NewSenderService(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run consumes both notification queues until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, "notifications.welcome", a.logger, a.senderService.SendWelcome)
	if err != nil {
		a.logger.Error("failed to start welcome consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumeMessages(ctx, a.ch, "notifications.password_reset", a.logger, a.senderService.SendPasswordReset)
	if err != nil {
		a.logger.Error("failed to start password reset consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
