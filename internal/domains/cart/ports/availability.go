package ports

import (
	"context"
	"errors"

	"github.com/bookworks/bookstore-api/internal/shared/money"
)

// ErrBookNotFound signals the referenced book does not exist or was removed.
var ErrBookNotFound = errors.New("book not found")

// BookView is the catalog projection the cart needs: a price/title
// snapshot plus current shelf availability.
type BookView struct {
	ID        int64
	Title     string
	UnitPrice money.Money
	Available int32
}

// BookAvailability answers point-in-time catalog lookups. The cart only
// checks availability; it never reserves stock.
type BookAvailability interface {
	GetBook(ctx context.Context, bookID int64) (*BookView, error)
}
