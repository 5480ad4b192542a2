// Package memory provides an in-memory cart store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
	"github.com/bookworks/bookstore-api/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps one cart per user behind a mutex.
type Repository struct {
	mu    sync.RWMutex
	carts map[int64]*domain.Cart
	now   func() time.Time
}

func NewRepository() *Repository {
	return &Repository{carts: map[int64]*domain.Cart{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) GetOrCreate(_ context.Context, userID int64) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart, ok := r.carts[userID]; ok {
		return cart.Clone(), nil
	}
	cart, err := domain.NewCart(userID, r.now())
	if err != nil {
		return nil, err
	}
	r.carts[userID] = cart
	return cart.Clone(), nil
}

func (r *Repository) Save(_ context.Context, cart *domain.Cart) error {
	if cart == nil {
		return domain.ErrInvalidUser
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.UserID] = cart.Clone()
	return nil
}
