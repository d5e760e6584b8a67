package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// ReservationsQueue is the durable queue carrying ReservationEvent messages.
const ReservationsQueue = "reservation.events"

// BookingLog appends one line per reservation event to booking.log inside
// Dir.  It is safe for concurrent use.
type BookingLog struct {
    Dir string

    mu sync.Mutex
}

// Append decodes a ReservationEvent from body and writes it to the log.
func (b *BookingLog) Append(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.ReservationID == 0 {
        return errors.New("event without type or reservation id")
    }

    b.mu.Lock()
    defer b.mu.Unlock()
    if err := os.MkdirAll(b.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", b.Dir, err)
    }
    f, err := os.OpenFile(filepath.Join(b.Dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders ev as a single newline terminated log line.
func FormatEvent(ev ReservationEvent) string {
    verb := "Reservation confirmed"
    if ev.Type == EventReservationCancelled {
        verb = "Reservation cancelled"
    }
    return fmt.Sprintf("[%s] %s | reservation_id=%d | user_id=%d | venue_id=%d | court_id=%d | date=%s | time=%s-%s | price=%d cents | event_id=%s\n",
        ev.OccurredAt, verb, ev.ReservationID, ev.UserID, ev.VenueID, ev.CourtID,
        ev.Date, ev.StartTime, ev.EndTime, ev.PriceCents, ev.EventID)
}

// StartBookingConsumer connects to the broker at url, declares the
// reservations queue and feeds every delivery to sink.  It reconnects with
// exponential backoff until ctx is cancelled and then returns ctx.Err().
// Messages the sink rejects are dropped without requeue.
func StartBookingConsumer(ctx context.Context, url string, sink *BookingLog, log *zap.Logger) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("booking consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, sink, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("booking consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, sink *BookingLog, log *zap.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("booking consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(ReservationsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ReservationsQueue, "", false, false, false, false, nil)
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
            if err := sink.Append(d.Body); err != nil {
                log.Error("booking consumer: handle message failed", zap.String("message_id", d.MessageId), zap.Error(err))
                _ = d.Nack(false, false)
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
