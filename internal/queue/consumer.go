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

// StartActivityConsumer connects to RabbitMQ, declares the
// document.generated and export.completed queues (durable), and
// consumes both. Each message is appended to logs/activity.log in a
// single-line, human-friendly format. The function runs a reconnect
// loop with backoff and keeps the server operating through broker
// outages; processing errors reject the offending message without
// requeueing to avoid tight loops.
func StartActivityConsumer() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("activity-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("activity-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("activity-consumer: set QoS failed: %v", err)
	}

	for _, q := range []string{DocumentGeneratedQueue, ExportCompletedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
	}

	docs, err := ch.Consume(DocumentGeneratedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", DocumentGeneratedQueue, err)
	}
	exports, err := ch.Consume(ExportCompletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ExportCompletedQueue, err)
	}

	for {
		select {
		case d, ok := <-docs:
			if !ok {
				return errors.New("document deliveries channel closed")
			}
			handle(d, formatDocumentLine)
		case d, ok := <-exports:
			if !ok {
				return errors.New("export deliveries channel closed")
			}
			handle(d, formatExportLine)
		}
	}
}

func handle(d amqp.Delivery, format func([]byte) (string, error)) {
	line, err := format(d.Body)
	if err != nil {
		log.Printf("activity-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false)
		return
	}
	if err := appendActivityLine(line); err != nil {
		log.Printf("activity-consumer: write activity log failed: %v", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func formatDocumentLine(body []byte) (string, error) {
	var ev DocumentGeneratedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	verb := "generated"
	if ev.Regenerated {
		verb = "regenerated"
	}
	return fmt.Sprintf("[%s] Document %s | doc_id=%s | idea_id=%d | user_id=%d | type=%s | version=%d | title=%q\n",
		ev.GeneratedAt, verb, ev.DocumentID, ev.IdeaID, ev.UserID, ev.DocumentType, ev.Version, ev.Title), nil
}

func formatExportLine(body []byte) (string, error) {
	var ev ExportCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	return fmt.Sprintf("[%s] Export completed | idea_id=%d | user_id=%d | idea=%q | file=%q | format=%s | files=%d\n",
		ev.CompletedAt, ev.IdeaID, ev.UserID, ev.IdeaName, ev.Filename, ev.Format, ev.FileCount), nil
}

func appendActivityLine(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "activity.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
