package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/mdc-cast/expense-approval/internal/config"
	"github.com/mdc-cast/expense-approval/internal/lib/smtp"
	"github.com/mdc-cast/expense-approval/internal/rabbitmq"
	senderservice "github.com/mdc-cast/expense-approval/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitRetries, cfg.RabbitDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, newTransport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.Consume(ctx, a.ch, rabbitmq.QueueAccountStatus, a.senderService.SendAccountStatus)
	if err != nil {
		a.logger.Error("failed to start account status consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.Consume(ctx, a.ch, rabbitmq.QueueExpenseStatus, a.senderService.SendExpenseStatus)
	if err != nil {
		a.logger.Error("failed to start expense status consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
