package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"brandcatalog/internal/model"
	"brandcatalog/internal/platform/rabbitmq"
)

type BrandEventStore interface {
	Create(ctx context.Context, event *model.BrandEvent) error
}

// BrandEventWorker drains the audit queue into the brand_events table.
type BrandEventWorker struct {
	conn      *amqp.Connection
	store     BrandEventStore
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBrandEventWorker(conn *amqp.Connection, store BrandEventStore, queueName string, logger *slog.Logger) *BrandEventWorker {
	return &BrandEventWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *BrandEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker prefetch failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Warn("brand event dropped", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("brand event worker started", "queue", w.queueName)
	return nil
}

func (w *BrandEventWorker) handle(ctx context.Context, body []byte) error {
	var event model.BrandEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode brand event failed: %w", err)
	}
	if event.BrandID == 0 || event.Action == "" {
		return fmt.Errorf("brand event missing brand id or action")
	}
	// The id is assigned by the table.
	event.ID = 0
	if err := w.store.Create(ctx, &event); err != nil {
		return fmt.Errorf("persist brand event failed: %w", err)
	}
	return nil
}

func (w *BrandEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
