package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange carries all account notifications.
const Exchange = "notifications"

// Routing keys per notification kind.
const (
	RoutingKeyWelcome       = "welcome"
	RoutingKeyPasswordReset = "password_reset"
)

// QueueConfig binds one queue to a routing key on the notifications
// exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues returns the topology both the publisher and the
// sender declare, so either side may start first.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.welcome", RoutingKey: RoutingKeyWelcome},
		{QueueName: "notifications.password_reset", RoutingKey: RoutingKeyPasswordReset},
	}
}

// SetupChannel opens a channel and declares the exchange, queues and
// bindings.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
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

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			Exchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
