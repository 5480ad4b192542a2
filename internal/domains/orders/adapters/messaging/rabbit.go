// Package messaging publishes order lifecycle events to RabbitMQ so
// fulfilment and notification consumers can react to committed orders.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	platformmessaging "github.com/bookworks/bookstore-api/internal/platform/messaging"
)

const (
	// OrderEventsQueue is the queue order lifecycle events are published to.
	OrderEventsQueue = "order.events"

	eventOrderCreated   = "order.created"
	eventOrderCancelled = "order.cancelled"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// OrderEvent is the wire envelope for order lifecycle notifications.
type OrderEvent struct {
	EventID    string           `json:"eventId"`
	EventType  string           `json:"eventType"`
	OccurredAt time.Time        `json:"occurredAt"`
	OrderID    int64            `json:"orderId"`
	Reference  string           `json:"reference"`
	UserID     int64            `json:"userId"`
	Status     string           `json:"status"`
	TotalCents int64            `json:"totalCents"`
	Currency   string           `json:"currency"`
	Items      []OrderEventItem `json:"items"`
}

// OrderEventItem is one order line in the event payload.
type OrderEventItem struct {
	BookID     int64  `json:"bookId"`
	Title      string `json:"title"`
	Quantity   int32  `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

// Publisher emits order events to the order events queue.
type Publisher struct {
	broker *platformmessaging.RabbitMQ
	now    func() time.Time
}

// NewPublisher declares the order events queue and returns a publisher.
func NewPublisher(broker *platformmessaging.RabbitMQ) (*Publisher, error) {
	if broker == nil {
		return nil, fmt.Errorf("rabbitmq broker is required")
	}
	if err := broker.DeclareQueue(OrderEventsQueue); err != nil {
		return nil, err
	}
	return &Publisher{broker: broker, now: time.Now}, nil
}

// WithClock overrides the time source for deterministic testing.
func (p *Publisher) WithClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, eventOrderCreated, order)
}

func (p *Publisher) OrderCancelled(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, eventOrderCancelled, order)
}

func (p *Publisher) publish(ctx context.Context, eventType string, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("cannot publish %s for nil order", eventType)
	}
	event := OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: p.now().UTC(),
		OrderID:    order.ID,
		Reference:  order.Reference,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalCents: order.Total.Amount,
		Currency:   order.Total.Currency,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, OrderEventItem{
			BookID:     item.BookID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			PriceCents: item.UnitPrice.Amount,
		})
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return p.broker.Publish(ctx, OrderEventsQueue, body)
}
