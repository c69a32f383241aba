// Package events содержит диспетчер доменных событий. Сервисы-хранилища
// не вызывают друг друга напрямую: мутатор возвращает событие, а диспетчер
// доставляет его в ленту уведомлений и, для адресных событий, в брокер,
// откуда сервис-отправитель рассылает письма.
package events

import (
	"context"
	"log/slog"

	"github.com/mdc-cast/expense-approval/internal/lib/sl"
	"github.com/mdc-cast/expense-approval/internal/models"
	"github.com/mdc-cast/expense-approval/internal/rabbitmq"
)

// Notifier описывает публикацию в ленту уведомлений.
type Notifier interface {
	Publish(ctx context.Context, message, notificationType string, metadata map[string]any) (*models.Notification, error)
}

// BrokerPublisher описывает публикацию сообщения в брокер.
type BrokerPublisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Dispatcher доставляет доменные события. Доставка выполняется по принципу
// наилучших усилий: сбой доставки логируется и не откатывает мутацию,
// породившую событие.
type Dispatcher struct {
	notifier Notifier
	broker   BrokerPublisher // nil отключает публикацию в брокер
	log      *slog.Logger
}

// New создает Dispatcher. broker может быть nil, если брокер не настроен.
func New(notifier Notifier, broker BrokerPublisher, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		broker:   broker,
		log:      log,
	}
}

// Dispatch обрабатывает события по одному: пишет уведомление, затем
// публикует адресные события в брокер. nil-события пропускаются, так что
// вызывающий код передаёт результат мутатора без проверок.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...*models.Event) {
	for _, event := range events {
		if event == nil {
			continue
		}
		if _, err := d.notifier.Publish(ctx, event.Message, event.Type, event.Metadata); err != nil {
			d.log.Error("failed to publish notification",
				slog.String("type", event.Type), sl.Err(err))
		}
		if d.broker == nil || event.Recipient == "" {
			continue
		}
		routingKey := rabbitmq.RoutingAccountStatus
		switch event.Type {
		case models.NotificationExpenseApproved, models.NotificationExpenseRejected:
			routingKey = rabbitmq.RoutingExpenseStatus
		}
		if err := d.broker.Publish(rabbitmq.Exchange, routingKey, event); err != nil {
			d.log.Error("failed to publish event to broker",
				slog.String("routing_key", routingKey), sl.Err(err))
		}
	}
}
