package ports

import (
	"context"

	"github.com/bookworks/bookstore-api/internal/domains/orders/application/types"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
)

// Service is the order workflow boundary consumed by transport and the
// durable workflow layer.
type Service interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (*domain.Order, error)
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
}
