package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordertypes "github.com/bookworks/bookstore-api/internal/domains/orders/application/types"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	orderports "github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

// CreateOrderActivityName runs the order-creation transaction.
const CreateOrderActivityName = "orders.activities.CreateOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// CreateOrder places an order through the application service. The
// service's own idempotency handling makes activity retries safe: a
// retried attempt with the same key replays the committed order.
func (a *Activities) CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order creation activity not initialized", "userId", input.UserID)
		return nil, errors.New("order creation activity not initialized")
	}
	logger.Info("CreateOrder activity started", "userId", input.UserID, "items", len(input.Items))
	order, err := a.service.CreateOrder(ctx, input)
	if err != nil {
		logger.Error("CreateOrder activity failed", "userId", input.UserID, "error", err)
		return nil, err
	}
	logger.Info("CreateOrder activity completed", "orderId", order.ID, "reference", order.Reference)
	return order, nil
}
