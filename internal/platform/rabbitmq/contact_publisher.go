package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"chemsite/internal/model"
)

// ContactPublisher enqueues contact notifications for the notify worker.
type ContactPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewContactPublisher(conn *amqp.Connection, queueName string) *ContactPublisher {
	return &ContactPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ContactPublisher) Publish(ctx context.Context, event model.ContactSubmitted) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal contact event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "contact.submitted",
			MessageId:    fmt.Sprintf("contact-%d", event.ID),
			Timestamp:    event.CreatedAt,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish contact event failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable queue shared by the publisher and the worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %s failed: %w", name, err)
	}
	return q, nil
}
