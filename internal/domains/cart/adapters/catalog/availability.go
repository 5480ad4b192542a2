// Package catalog bridges the cart's availability port to the catalog
// bounded context.
package catalog

import (
	"context"
	"errors"

	cartports "github.com/bookworks/bookstore-api/internal/domains/cart/ports"
	catalogports "github.com/bookworks/bookstore-api/internal/domains/catalog/ports"
)

var _ cartports.BookAvailability = (*Availability)(nil)

// Availability answers cart lookups from the catalog repository.
type Availability struct {
	books catalogports.Repository
}

func NewAvailability(books catalogports.Repository) *Availability {
	return &Availability{books: books}
}

func (a *Availability) GetBook(ctx context.Context, bookID int64) (*cartports.BookView, error) {
	book, err := a.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, cartports.ErrBookNotFound
		}
		return nil, err
	}
	return &cartports.BookView{
		ID:        book.ID,
		Title:     book.Title,
		UnitPrice: book.Price,
		Available: book.Quantity,
	}, nil
}
