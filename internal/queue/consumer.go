package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartTodoEventConsumer connects to RabbitMQ, declares the events queue
// (durable), and appends every message to logPath as a single line.  It
// reconnects with exponential backoff and never returns; malformed messages
// are logged and rejected without requeue.
func StartTodoEventConsumer(url, queueName, logPath string) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("todo-events: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        if err := consumeLoop(conn, queueName, logPath); err != nil {
            log.Printf("todo-events: consume loop ended: %v; reconnecting", err)
            _ = conn.Close()
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection, queueName, logPath string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("todo-events: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body, logPath); err != nil {
            log.Printf("todo-events: handle message failed: %v", err)
            _ = d.Nack(false, false) // do not requeue poison messages
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, logPath string) error {
    var ev TodoEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev TodoEvent) string {
    if ev.Type == TodoDeleted {
        return fmt.Sprintf("[%s] %s | todo_id=%d\n", ev.OccurredAt, ev.Type, ev.TodoID)
    }
    return fmt.Sprintf("[%s] %s | todo_id=%d | title=%q | done=%t\n",
        ev.OccurredAt, ev.Type, ev.TodoID, ev.Title, ev.Done)
}
