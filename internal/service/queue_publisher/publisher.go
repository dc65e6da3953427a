// Package queue_publisher bridges the engine's notification hook to
// RabbitMQ.  Publish errors are logged and returned; the engine treats
// delivery as fire-and-forget, so a broker outage never rolls back a
// completed transition.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openfms/facility-desk/internal/engine"
	q "github.com/openfms/facility-desk/internal/queue"
)

// Publisher implements engine.Notifier over the facility.events queue.
// A fresh connection is dialed per publish: lifecycle events are rare
// (a handful per mutation), so connection churn is cheaper here than a
// reconnecting channel pool would be to maintain.
type Publisher struct {
	url string
}

// New returns a Publisher targeting the broker resolved from the
// environment.
func New() *Publisher {
	return &Publisher{url: q.BrokerURL()}
}

// Notify marshals the notification into a LifecycleEvent and publishes
// it as a persistent message.  The queue is declared on every publish,
// which is idempotent and lets the publisher start before the
// consumer.
func (p *Publisher) Notify(ctx context.Context, n engine.Notification) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		q.EventsQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(q.LifecycleEvent{
		Kind:        string(n.Kind),
		EntityType:  n.EntityType,
		EntityID:    n.EntityID,
		Status:      n.Status,
		RecipientID: n.RecipientID,
		ActorID:     n.ActorID,
		Message:     n.Message,
		OccurredAt:  n.OccurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                // default exchange
		q.EventsQueueName, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
