package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher delivers committed occupancy events.  Publishing happens after
// commit; a failure never undoes the change, callers only log it.
type Publisher interface {
    Publish(ctx context.Context, ev OccupancyEvent) error
}

// AMQPPublisher publishes JSON events to a durable RabbitMQ queue.  It
// dials per publish: occupancy changes are rare enough that a pooled
// channel is not worth its reconnect handling.
type AMQPPublisher struct {
    url   string
    queue string
    log   *zap.Logger
}

func NewAMQPPublisher(url, queue string, log *zap.Logger) *AMQPPublisher {
    return &AMQPPublisher{url: url, queue: queue, log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev OccupancyEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := declare(ch, p.queue); err != nil {
        return err
    }

    err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         string(ev.Kind),
        Timestamp:    ev.OccurredAt,
        Body:         body,
    })
    if err != nil {
        return fmt.Errorf("publish %s: %w", ev.Kind, err)
    }
    p.log.Debug("occupancy event published", zap.String("id", ev.ID), zap.String("kind", string(ev.Kind)))
    return nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
    q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
    if err != nil {
        return q, fmt.Errorf("declare queue %s: %w", queue, err)
    }
    return q, nil
}

// FeedPublisher writes events straight to the activity feed.  It is used
// when no broker is configured.
type FeedPublisher struct {
    Feed *ActivityFeed
}

func (p FeedPublisher) Publish(ctx context.Context, ev OccupancyEvent) error {
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
    defer cancel()
    return p.Feed.Push(ctx, ev)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OccupancyEvent) error { return nil }
