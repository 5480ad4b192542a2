package ports

import (
	"context"

	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
)

// EventPublisher announces committed order state changes to downstream
// consumers (fulfilment, notifications). Publishing happens after commit
// and is best-effort; failures must not fail the order.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
	OrderCancelled(ctx context.Context, order *domain.Order) error
}
