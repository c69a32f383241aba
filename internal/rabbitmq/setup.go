package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange — точка обмена для событий уведомлений.
const Exchange = "notifications"

// Ключи маршрутизации событий.
const (
	RoutingAccountStatus = "account-status"
	RoutingExpenseStatus = "expense-status"
)

// Очереди сервиса-отправителя писем.
const (
	QueueAccountStatus = "notifications.account"
	QueueExpenseStatus = "notifications.expense"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые слушает отправитель.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueAccountStatus, RoutingKey: RoutingAccountStatus},
		{QueueName: QueueExpenseStatus, RoutingKey: RoutingExpenseStatus},
	}
}

// SetupChannel открывает канал, объявляет exchange и привязывает очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, q.QueueName, err)
		}
	}
	return ch, nil
}
