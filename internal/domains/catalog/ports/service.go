package ports

import (
	"context"

	"github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
)

// Service exposes the catalog use cases consumed by HTTP transport
// and by the cart's availability checks.
type Service interface {
	AddBook(ctx context.Context, book *domain.Book) (*domain.Book, error)
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context) ([]*domain.Book, error)
	Restock(ctx context.Context, id int64, qty int32) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
}
