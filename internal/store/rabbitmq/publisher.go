package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/linkedcraft/internal/history"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// DeclareTopology declares the events queue and its dead-letter queue.
// Publisher and worker both call it so the queue arguments always match.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	dlqQ := queue + ".dlq"

	// DLQ
	if _, err := ch.QueueDeclare(
		dlqQ,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	_, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlqQ,
		},
	)
	return err
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Archive publishes a settled generation event for the worker to store.
func (p *Publisher) Archive(ctx context.Context, ev history.Event) error {
	body, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.RequestID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

func EncodeEvent(ev history.Event) ([]byte, error) {
	return json.Marshal(ev)
}

// DecodeEvent rejects bodies without the ids needed to archive them.
func DecodeEvent(body []byte) (history.Event, error) {
	var ev history.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return history.Event{}, err
	}
	if ev.RequestID == "" || ev.UserID == "" {
		return history.Event{}, errMissingIDs
	}
	return ev, nil
}
