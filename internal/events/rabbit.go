package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Rabbit publishes JSON events to a durable topic exchange.
type Rabbit struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewRabbit(url, exchange string) *Rabbit {
	return &Rabbit{url: url, exchange: exchange}
}

func (b *Rabbit) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connectLocked()
}

func (b *Rabbit) connectLocked() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	b.conn = conn
	b.ch = ch
	return nil
}

func (b *Rabbit) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
	b.ch, b.conn = nil, nil
}

func (b *Rabbit) Publish(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// one reconnect attempt on a dropped channel
	if b.ch == nil || b.ch.IsClosed() {
		if err := b.connectLocked(); err != nil {
			return fmt.Errorf("rabbit reconnect: %w", err)
		}
	}

	return b.ch.PublishWithContext(ctx, b.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}
