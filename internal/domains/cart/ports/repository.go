package ports

import (
	"context"

	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
)

// Repository stores one cart per user.
type Repository interface {
	// GetOrCreate returns the user's cart, creating an empty one on
	// first use.
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	// Save persists the full cart state.
	Save(ctx context.Context, cart *domain.Cart) error
}
