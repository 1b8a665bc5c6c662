package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Rabbit struct {
	conn    *amqp.Connection
	ch      Channel
	now     func() time.Time
	timeout time.Duration
}

// DialRabbit connects to url and declares the order.created queue so a
// publish never fails for missing infrastructure.
func DialRabbit(url string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare %s: %w", OrderCreatedQueue, err)
	}
	p := NewRabbit(ch)
	p.conn = conn
	return p, nil
}

// NewRabbit publishes on an already open channel.
func NewRabbit(ch Channel) *Rabbit {
	return &Rabbit{ch: ch, now: time.Now, timeout: 3 * time.Second}
}

func (p *Rabbit) PublishOrderCreated(ctx context.Context, ev OrderCreated) error {
	ev.EventType = "OrderCreated"
	if ev.Timestamp.IsZero() {
		ev.Timestamp = p.now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.ch.PublishWithContext(pubCtx,
		"",                // default exchange
		OrderCreatedQueue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.OrderID,
			Timestamp:    ev.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", OrderCreatedQueue, err)
	}
	return nil
}

func (p *Rabbit) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
