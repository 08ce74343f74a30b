package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Consumer moves occupancy events from RabbitMQ into the activity feed.
type Consumer struct {
    url   string
    queue string
    feed  *ActivityFeed
    log   *zap.Logger
}

func NewConsumer(url, queue string, feed *ActivityFeed, log *zap.Logger) *Consumer {
    return &Consumer{url: url, queue: queue, feed: feed, log: log.Named("occupancy-consumer")}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff (capped at 30s) whenever the broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("set qos failed", zap.Error(err))
    }
    if _, err := declare(ch, c.queue); err != nil {
        return err
    }
    msgs, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", c.queue, err)
    }

    for d := range msgs {
        if err := c.Handle(ctx, d.Body); err != nil {
            c.log.Error("drop occupancy event", zap.Error(err), zap.String("message_id", d.MessageId))
            _ = d.Nack(false, false) // do not requeue a message that cannot be handled
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// Handle decodes one message body and appends it to the feed.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
    var ev OccupancyEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Kind == "" || ev.HostelID == 0 {
        return fmt.Errorf("event %q has no kind or hostel", ev.ID)
    }
    if err := c.feed.Push(ctx, ev); err != nil {
        return fmt.Errorf("push activity: %w", err)
    }
    c.log.Info(ev.Message(),
        zap.String("id", ev.ID),
        zap.String("kind", string(ev.Kind)),
        zap.Uint64("hostel_id", ev.HostelID),
        zap.Uint64("room_id", ev.RoomID),
        zap.Uint64("guest_id", ev.GuestID),
        zap.Int("occupied_beds", ev.OccupiedBeds),
        zap.Int("sharing_type", ev.SharingType),
    )
    return nil
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
