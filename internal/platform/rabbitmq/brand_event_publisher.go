package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"brandcatalog/internal/model"
)

// BrandEventPublisher sends audit events to a durable queue. One channel is
// opened lazily and reused; a failed publish drops it so the next call
// reopens.
type BrandEventPublisher struct {
	conn      *amqp.Connection
	queueName string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewBrandEventPublisher(conn *amqp.Connection, queueName string) *BrandEventPublisher {
	return &BrandEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *BrandEventPublisher) Publish(ctx context.Context, event model.BrandEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal brand event failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("open rabbitmq channel failed: %w", err)
		}
		p.ch = ch
	}

	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "brand." + event.Action,
			Timestamp:    event.OccurredAt,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		_ = p.ch.Close()
		p.ch = nil
		return fmt.Errorf("publish brand event failed: %w", err)
	}
	return nil
}

func (p *BrandEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}
