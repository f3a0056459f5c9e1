package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// ConsumeMessages drains a queue in a background goroutine, handing
// each body to handle. A failed delivery is nacked back onto the queue,
// a handled one is acked. Stops when ctx is canceled.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queue string, log *slog.Logger, handle func([]byte) error) error {
	const op = "rabbitmq.ConsumeMessages"

	deliveries, err := ch.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := handle(d.Body); err != nil {
					log.Error("failed to handle delivery",
						slog.String("queue", queue), slog.Any("err", err))
					_ = d.Nack(false, true)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()
	return nil
}
