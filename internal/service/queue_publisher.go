// Package service holds adapters between the booking domain and external
// infrastructure.  RabbitPublisher delivers reservation events to
// RabbitMQ.  Errors are logged and returned so callers can ignore them
// without interrupting the request flow.
package service

import (
    "context"
    "encoding/json"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    q "github.com/JasminRadadiya29/QuickCourt-sub000/internal/queue"
)

// RabbitPublisher publishes ReservationEvents to the durable reservations
// queue through the default exchange.  A connection is dialed per publish,
// which keeps the publisher stateless across broker restarts.
type RabbitPublisher struct {
    url string
    log *zap.Logger
}

// NewRabbitPublisher returns a publisher for the broker at url.
func NewRabbitPublisher(url string, log *zap.Logger) *RabbitPublisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &RabbitPublisher{url: url, log: log}
}

// PublishReservation implements booking.EventPublisher.  Messages are
// marked persistent.
func (p *RabbitPublisher) PublishReservation(ctx context.Context, ev q.ReservationEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent).  Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.ReservationsQueue, // name
        true,                // durable
        false,               // autoDelete
        false,               // exclusive
        false,               // noWait
        nil,                 // args
    ); err != nil {
        p.log.Warn("rabbitmq: queue declare failed", zap.Error(err))
        return err
    }

    pub, err := buildPublishing(ev, time.Now().UTC())
    if err != nil {
        p.log.Warn("rabbitmq: marshal event failed", zap.Error(err))
        return err
    }

    if err := ch.PublishWithContext(ctx,
        "",                  // default exchange
        q.ReservationsQueue, // routing key = queue name
        false,               // mandatory
        false,               // immediate
        pub,
    ); err != nil {
        p.log.Warn("rabbitmq: publish failed", zap.String("type", ev.Type), zap.Error(err))
        return err
    }
    return nil
}

func buildPublishing(ev q.ReservationEvent, now time.Time) (amqp.Publishing, error) {
    if ev.EventID == "" {
        ev.EventID = uuid.NewString()
    }
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    ev.EventID,
        Type:         ev.Type,
        Timestamp:    now,
        Body:         body,
    }, nil
}
