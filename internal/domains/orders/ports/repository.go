package ports

import (
	"context"
	"errors"

	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Tx is a transaction handle. Adapters type-assert to their concrete
// transaction type.
type Tx interface {
	Commit() error
	Rollback() error
}

// Repository persists Order aggregates. Writes happen inside a
// transaction started with Begin so the workflow can bundle stock
// reservations, order persistence, and the idempotency binding into one
// atomic unit.
type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	Create(ctx context.Context, tx Tx, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// UpdateStatus persists the from -> to transition as a
	// compare-and-swap on the stored status: the write applies only
	// while the order is still in from, so two racing transitions can
	// never both land. A stale from yields the domain's
	// InvalidTransitionError carrying the current status; an unknown id
	// yields ErrNotFound.
	UpdateStatus(ctx context.Context, tx Tx, id int64, from, to domain.Status) error
}
