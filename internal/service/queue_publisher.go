package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/platif-ai/spbu-pos/internal/queue"
)

// Publisher publishes domain events to RabbitMQ.  Each publish opens a short
// lived connection; sales are rare enough at a single pump that pooling is
// not needed.
type Publisher struct {
	url string
}

// NewPublisher returns nil when url is empty so callers can skip publishing.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// PublishSaleRecorded publishes a SaleRecordedEvent to the "sale.recorded"
// queue.  Any error is logged and returned so the caller can choose to
// ignore it.  Messages are marked as persistent.
func (p *Publisher) PublishSaleRecorded(ctx context.Context, event q.SaleRecordedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("rabbitmq: marshal event failed", "error", err)
		return err
	}
	return p.publish(ctx, q.SaleRecordedQueue, body)
}

// PublishPlateDetected publishes a detector reading; used by tooling and
// tests that feed the relay through the broker.
func (p *Publisher) PublishPlateDetected(ctx context.Context, event q.PlateDetectedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.publish(ctx, q.PlateDetectedQueue, body)
}

func (p *Publisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		slog.Warn("rabbitmq: dial failed", "queue", queue, "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Warn("rabbitmq: channel open failed", "queue", queue, "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		slog.Warn("rabbitmq: queue declare failed", "queue", queue, "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		slog.Warn("rabbitmq: publish failed", "queue", queue, "error", err)
		return err
	}
	return nil
}
