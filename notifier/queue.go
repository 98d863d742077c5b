package notifier

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yeremiapane/kitchen-queue/utils"
)

// Queue is the durable outbound email queue. Decoupling delivery from the
// commit path means the engine only guarantees hand-off after a successful
// commit, not delivery.
type Queue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
}

// DialQueue connects to RabbitMQ and declares the durable queue.
func DialQueue(url, name string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Queue{conn: conn, ch: ch, name: name}, nil
}

func (q *Queue) Publish(msg Email) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return q.ch.PublishWithContext(ctx, "", q.name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Consume starts a worker goroutine handing each queued email to handler.
// A failed handler nacks with requeue so delivery is retried.
func (q *Queue) Consume(handler func(Email) error) error {
	deliveries, err := q.ch.Consume(q.name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	go func() {
		for d := range deliveries {
			var msg Email
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				utils.ErrorLogger.Printf("notifier: discarding malformed email job: %v", err)
				d.Nack(false, false)
				continue
			}
			if err := handler(msg); err != nil {
				utils.ErrorLogger.Printf("notifier: email to %s failed, requeueing: %v", msg.To, err)
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

func (q *Queue) Close() {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
