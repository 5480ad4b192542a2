package memory

import (
	"context"
	"errors"
	"sync"

	catalogports "github.com/bookworks/bookstore-api/internal/domains/catalog/ports"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

var _ ports.InventoryLedger = (*Ledger)(nil)

// Ledger implements the inventory ledger over the catalog repository.
// A single mutex serializes every check-and-decrement, so concurrent
// reservations for the same book can never oversell.
type Ledger struct {
	mu    sync.Mutex
	books catalogports.Repository
}

// NewLedger wires the ledger onto a catalog repository.
func NewLedger(books catalogports.Repository) *Ledger {
	return &Ledger{books: books}
}

// TryReserve atomically decrements availability and captures the price
// snapshot. On rollback of the enclosing transaction the decrement is
// reversed.
func (l *Ledger) TryReserve(ctx context.Context, tx ports.Tx, bookID int64, qty int32) (*ports.BookSnapshot, error) {
	memTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	book, err := l.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, ports.ErrBookNotFound
		}
		return nil, err
	}
	if err := book.Reserve(qty); err != nil {
		return nil, err
	}
	if _, err := l.books.Save(ctx, book); err != nil {
		return nil, err
	}
	memTx.onRollback(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		_ = l.release(context.Background(), bookID, qty)
	})
	return &ports.BookSnapshot{BookID: book.ID, Title: book.Title, UnitPrice: book.Price}, nil
}

// Release returns qty units to the book's availability.
func (l *Ledger) Release(ctx context.Context, tx ports.Tx, bookID int64, qty int32) error {
	memTx, err := asTx(tx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.release(ctx, bookID, qty); err != nil {
		return err
	}
	memTx.onRollback(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		_ = l.reserveBack(context.Background(), bookID, qty)
	})
	return nil
}

// release requires l.mu to be held.
func (l *Ledger) release(ctx context.Context, bookID int64, qty int32) error {
	book, err := l.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return ports.ErrBookNotFound
		}
		return err
	}
	if err := book.Release(qty); err != nil {
		return err
	}
	_, err = l.books.Save(ctx, book)
	return err
}

func (l *Ledger) reserveBack(ctx context.Context, bookID int64, qty int32) error {
	book, err := l.books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	book.Quantity -= qty
	_, err = l.books.Save(ctx, book)
	return err
}
