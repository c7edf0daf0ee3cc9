package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chemsite/internal/model"
	"chemsite/internal/notify"
	"chemsite/internal/platform/rabbitmq"
)

const dispatchTimeout = 30 * time.Second

// ContactNotifyWorker drains the contact queue into a Notifier. Failed
// deliveries are dropped rather than requeued.
type ContactNotifyWorker struct {
	conn      *amqp.Connection
	notifier  notify.Notifier
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewContactNotifyWorker(conn *amqp.Connection, notifier notify.Notifier, queueName string, logger *zap.Logger) *ContactNotifyWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactNotifyWorker{
		conn:      conn,
		notifier:  notifier,
		queueName: queueName,
		logger:    logger.Named("contact_notify_worker"),
	}
}

func (w *ContactNotifyWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		return err
	}
	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
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
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()
		w.run(workerCtx, deliveries)
	}()

	w.logger.Info("worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *ContactNotifyWorker) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *ContactNotifyWorker) handle(ctx context.Context, d amqp.Delivery) {
	var event model.ContactSubmitted
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.logger.Error("decode contact event failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := w.notifier.Notify(dispatchCtx, event); err != nil {
		w.logger.Error("dispatch contact notification failed",
			zap.Uint("contact_id", event.ID),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (w *ContactNotifyWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
