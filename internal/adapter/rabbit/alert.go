package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/Temutjin2k/niva/internal/domain/types"
	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
	"github.com/Temutjin2k/niva/pkg/metrics"
	"github.com/Temutjin2k/niva/pkg/rabbit"
)

const (
	NotificationExchange = "notification_topic"
	QueueNotifications   = "notification_requests"
	AlertBindingKey      = "alert.#"
)

// RoutingKey returns the key an alert is published with: alert.<kind>.<session_id>.
func RoutingKey(alert models.AlertRequest) string {
	return fmt.Sprintf("alert.%s.%s", alert.Kind, alert.SessionID)
}

type AlertBroker struct {
	client  *rabbit.RabbitMQ
	service string

	l logger.Logger
}

func NewAlertBroker(client *rabbit.RabbitMQ, service string, log logger.Logger) *AlertBroker {
	return &AlertBroker{
		client:  client,
		service: service,
		l:       log,
	}
}

// Setup declares the exchange, the queue and their binding.
func (b *AlertBroker) Setup(ctx context.Context) error {
	ch, err := b.client.Channel(ctx)
	if err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(NotificationExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", NotificationExchange, err)
	}

	q, err := ch.QueueDeclare(QueueNotifications, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueNotifications, err)
	}

	if err := ch.QueueBind(q.Name, AlertBindingKey, NotificationExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", q.Name, err)
	}
	return nil
}

// PublishAlert sends an alert request to the notification exchange.
func (b *AlertBroker) PublishAlert(ctx context.Context, alert models.AlertRequest) error {
	ctx = wrap.WithAction(ctx, types.ActionAlertPublished)

	body, err := json.Marshal(alert)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal alert: %w", err))
	}

	key := RoutingKey(alert)

	err = retry(ctx, 3, time.Second, func() error {
		ch, err := b.client.Channel(ctx)
		if err != nil {
			return err
		}
		return ch.PublishWithContext(ctx, NotificationExchange, key, false, false, amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			MessageId:     alert.ID.String(),
			CorrelationId: wrap.GetRequestID(ctx),
			Timestamp:     time.Now(),
			Body:          body,
		})
	})
	metrics.RecordRabbitMQPublish(b.service, NotificationExchange, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to publish alert: %w", err))
	}

	b.l.Debug(ctx, "alert published", "routing_key", key)
	return nil
}

type AlertHandler func(ctx context.Context, alert models.AlertRequest) error

// ErrPermanent marks a handler error that must not be requeued.
var ErrPermanent = errors.New("permanent failure")

// ConsumeAlerts delivers alert requests to handler until ctx is done.
// Each delivery is handled in its own goroutine and acked when handled.
func (b *AlertBroker) ConsumeAlerts(ctx context.Context, handler AlertHandler) error {
	ctx = wrap.WithAction(ctx, types.ActionAlertConsumed)

	for {
		if ctx.Err() != nil {
			b.l.Debug(ctx, "alert consumer stopped by context")
			return nil
		}

		ch, err := b.client.Channel(ctx)
		if err != nil {
			if errors.Is(err, rabbit.ErrClosed) {
				return nil
			}
			b.l.Error(ctx, "ensure connection failed", err)
			wait(ctx, 2*time.Second)
			continue
		}

		msgs, err := ch.Consume(QueueNotifications, "", false, false, false, false, nil)
		if err != nil {
			b.l.Error(ctx, "consume failed", err)
			wait(ctx, 2*time.Second)
			continue
		}

		b.l.Info(ctx, "start consuming alerts", "queue", QueueNotifications)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				b.l.Info(ctx, "alert consumer shutting down")
				return nil

			case msg, ok := <-msgs:
				if !ok {
					b.l.Warn(ctx, "message channel closed, reconnecting...")
					break consumeLoop
				}
				go b.handle(ctx, msg, handler)
			}
		}
	}
}

func (b *AlertBroker) handle(ctx context.Context, d amqp091.Delivery, handler AlertHandler) {
	var alert models.AlertRequest
	if err := json.Unmarshal(d.Body, &alert); err != nil {
		metrics.RecordRabbitMQConsume(b.service, QueueNotifications, err)
		b.l.Error(ctx, "failed to unmarshal alert", err)
		d.Nack(false, false)
		return
	}

	ctx = wrap.WithRequestID(ctx, d.CorrelationId)
	ctx = wrap.WithSessionID(ctx, alert.SessionID.String())

	err := handler(ctx, alert)
	metrics.RecordRabbitMQConsume(b.service, QueueNotifications, err)
	if err != nil {
		b.l.Error(wrap.ErrorCtx(ctx, err), "failed to handle alert", err, "kind", alert.Kind)
		// redelivered once, then dropped
		d.Nack(false, !d.Redelivered && !errors.Is(err, ErrPermanent))
		return
	}

	d.Ack(false)
}
