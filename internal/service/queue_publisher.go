// Package service provides the outbound event publisher used by the todo
// handlers.  Errors are logged and returned so callers can ignore failures
// without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/todo-api/internal/config"
	q "github.com/iliyamo/todo-api/internal/queue"
)

// EventPublisher delivers todo lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event q.TodoEvent) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.TodoEvent) error { return nil }

// AMQPPublisher dials the broker for each event, mirroring the
// connection-per-request model of the database layer.
type AMQPPublisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
}

// defaultDialTimeout applies when DialTimeout is unset.  amqp091's own
// default is 30s, far longer than a request should wait on a side effect.
const defaultDialTimeout = 2 * time.Second

// NewPublisher returns an AMQPPublisher when a broker URL is configured and
// a NopPublisher otherwise.
func NewPublisher(cfg config.EventsConfig) EventPublisher {
	if cfg.URL == "" {
		return NopPublisher{}
	}
	return &AMQPPublisher{URL: cfg.URL, Queue: cfg.Queue, DialTimeout: cfg.DialTimeout}
}

// dialTimeout is DialTimeout, shortened to the context deadline if sooner.
func (p *AMQPPublisher) dialTimeout(ctx context.Context) time.Duration {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	return timeout
}

// Publish sends event to the configured durable queue as a persistent
// JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, event q.TodoEvent) error {
	timeout := p.dialTimeout(ctx)
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
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

	// Idempotent; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
