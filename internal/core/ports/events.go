package ports

import (
	"context"
	"time"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is what the kitchen and dispatch consumers receive.
type OrderEvent struct {
	Type         string             `json:"type"`
	OrderID      int64              `json:"order_id"`
	TrackingCode string             `json:"tracking_code"`
	Status       domain.OrderStatus `json:"status"`
	Total        string             `json:"total,omitempty"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
