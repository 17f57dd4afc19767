package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/spotterlabs/beacon/internal/models"
)

var _ Sink = (*AMQPSink)(nil)

const (
	exchangeName = "beacon.events"
	queueName    = "proximity_alerts"
)

// AMQPSink publishes alert commands to a fanout exchange bound to a
// durable queue, from which the host delivery layer picks them up.
type AMQPSink struct {
	ch *amqp.Channel
}

// NewAMQPSink declares the exchange and queue and returns a sink
// publishing to them.
func NewAMQPSink(conn *amqp.Connection) (*AMQPSink, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &AMQPSink{ch: ch}, nil
}

// Enqueue publishes the alert as JSON.
func (s *AMQPSink) Enqueue(ctx context.Context, cmd models.AlertCommand) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	return s.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
