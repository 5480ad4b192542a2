package ports

import (
	"context"

	"github.com/bookworks/bookstore-api/internal/domains/orders/application/types"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator starts the order-creation workflow, either inline
// or on a durable execution engine.
type WorkflowOrchestrator interface {
	CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error)
}
