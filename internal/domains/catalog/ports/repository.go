package ports

import (
	"context"
	"errors"

	"github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("book not found")

// Repository persists Book aggregates. Implementations must exclude
// soft-deleted rows from every read path.
type Repository interface {
	Save(ctx context.Context, book *domain.Book) (*domain.Book, error)
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context) ([]*domain.Book, error)
	Delete(ctx context.Context, id int64) error
}
