package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Begin(_ context.Context) (ports.Tx, error) {
	return &Tx{}, nil
}

// Create stores the order eagerly; the undo hook removes it again on
// rollback. Until Commit or Rollback resolves the transaction, GetByID
// can observe the pending row. That is acceptable for this
// single-process fallback because a memory Commit cannot fail.
func (r *Repository) Create(_ context.Context, tx ports.Tx, order *domain.Order) (*domain.Order, error) {
	memTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := order.Clone()
	r.nextID++
	clone.ID = r.nextID
	clone.Audit.Touch(r.now())
	r.orders[clone.ID] = clone
	id := clone.ID
	memTx.onRollback(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.orders, id)
	})
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// UpdateStatus applies the from -> to transition only while the stored
// status still equals from, mirroring the conditional UPDATE of the
// postgres adapter so racing transitions resolve to a single winner.
func (r *Repository) UpdateStatus(_ context.Context, tx ports.Tx, id int64, from, to domain.Status) error {
	memTx, err := asTx(tx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if order.Status != from {
		return &domain.InvalidTransitionError{From: order.Status, To: to}
	}
	order.Status = to
	order.Audit.UpdatedAt = r.now()
	memTx.onRollback(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if current, ok := r.orders[id]; ok {
			current.Status = from
		}
	})
	return nil
}
