package ports

import (
	"context"
	"errors"

	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var ErrBookNotFound = errors.New("book not found")

// BookSnapshot is the price/title snapshot captured atomically with a
// successful reservation.
type BookSnapshot struct {
	BookID    int64
	Title     string
	UnitPrice money.Money
}

// InventoryLedger owns each book's available quantity. TryReserve and
// Release are atomic: concurrent reservations for the same book never
// oversell, and a failed TryReserve leaves the ledger untouched. A
// successful reservation is a permanent decrement, reversed only by an
// explicit Release on cancellation.
//
// Both operations join the transaction handle passed in so a rolled-back
// order restores every decrement it made.
type InventoryLedger interface {
	// TryReserve decrements availability by qty and returns the price
	// snapshot. It fails with ErrBookNotFound or with the catalog
	// domain's InsufficientStockError (carrying requested vs available).
	TryReserve(ctx context.Context, tx Tx, bookID int64, qty int32) (*BookSnapshot, error)
	// Release returns qty units to the book's availability.
	Release(ctx context.Context, tx Tx, bookID int64, qty int32) error
}
