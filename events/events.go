package events

import (
	"context"
	"time"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

// Event describes a committed change in an order's lifecycle.
type Event struct {
	Type           string    `json:"type"`
	OrderID        uint      `json:"order_id"`
	TableNumber    int       `json:"table_number"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Total          int64     `json:"total"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RoutingKey is the topic key, e.g. "order.status_changed.completed".
func (e Event) RoutingKey() string {
	if e.Status == "" {
		return e.Type
	}
	return e.Type + "." + e.Status
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops events; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
