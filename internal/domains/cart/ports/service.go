package ports

import (
	"context"

	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
)

// Service exposes the shopping cart use cases consumed by HTTP transport.
type Service interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, bookID int64, quantity int32) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, bookID int64, quantity int32) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, bookID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) (*domain.Cart, error)
}
