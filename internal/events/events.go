// Package events announces accepted orders to other services.
package events

import (
	"context"
	"time"
)

const OrderCreatedQueue = "order.created"

// OrderCreated is the message body published for every stored order. Total
// and ItemCount are best effort: loose payloads may not carry them.
type OrderCreated struct {
	EventType string    `json:"eventType"`
	OrderID   string    `json:"orderId"`
	ItemCount int       `json:"itemCount"`
	Total     *float64  `json:"total,omitempty"`
	CreatedAt string    `json:"createdAt"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers order events. Delivery failures are the caller's to log;
// an order is never rolled back because its event was lost.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, ev OrderCreated) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
func (Nop) Close() error                                            { return nil }
