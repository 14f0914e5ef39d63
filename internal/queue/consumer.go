package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one message body.  A returned error rejects the message
// without requeueing it.
type Handler func(ctx context.Context, body []byte) error

// Consumer declares a durable queue and feeds its deliveries to a Handler,
// reconnecting with exponential back-off whenever the broker goes away.
type Consumer struct {
	URL      string
	Queue    string
	Handle   Handler
	Prefetch int // QoS prefetch count; 0 means 50
	backoff  time.Duration
}

// Run blocks until ctx is cancelled.  Processing errors are logged and the
// offending message rejected so the server keeps operating.
func (c *Consumer) Run(ctx context.Context) error {
	log := slog.With("component", "consumer", "queue", c.Queue)
	c.backoff = time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("failed to dial broker", "error", err, "retry_in", c.backoff.String())
			if !sleep(ctx, c.backoff) {
				return ctx.Err()
			}
			if c.backoff < 30*time.Second {
				c.backoff *= 2
			}
			continue
		}
		c.backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	prefetch := c.Prefetch
	if prefetch <= 0 {
		prefetch = 50
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		slog.Warn("consumer: set QoS failed", "queue", c.Queue, "error", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				slog.Warn("consumer: handle message failed", "queue", c.Queue, "error", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
