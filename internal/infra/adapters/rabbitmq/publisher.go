package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jcmexdev/broaster-orders/internal/core/ports"
)

const publishTimeout = 5 * time.Second

var _ ports.EventPublisher = (*Publisher)(nil)

type Publisher struct {
	pool      *ChannelPool
	queueName string
}

func NewPublisher(pool *ChannelPool, queueName string) *Publisher {
	return &Publisher{pool: pool, queueName: queueName}
}

// Publish sends event as a persistent JSON message on the default exchange,
// routed straight to the queue.
func (p *Publisher) Publish(ctx context.Context, event ports.OrderEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ch, err := p.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s for %s: %w", event.Type, event.TrackingCode, err)
	}
	defer p.pool.Put(ch)

	if err := ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		msg,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish %s for %s: %w", event.Type, event.TrackingCode, err)
	}

	slog.DebugContext(ctx, "order event published",
		"type", event.Type,
		"tracking_code", event.TrackingCode,
		"message_id", msg.MessageId,
	)
	return nil
}

func newPublishing(event ports.OrderEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal %s: %w", event.Type, err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}
