package domain

import (
	"errors"
	"fmt"

	"github.com/bookworks/bookstore-api/internal/shared/audit"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var (
	ErrEmptyTitle      = errors.New("book title must not be empty")
	ErrInvalidPrice    = errors.New("book price is invalid")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNegativeStock   = errors.New("book quantity must not be negative")
)

// InsufficientStockError reports a reservation that exceeded availability.
type InsufficientStockError struct {
	BookID    int64
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: requested %d, available %d", e.BookID, e.Requested, e.Available)
}

// Book is the inventory-relevant view of a catalog entry. Quantity is
// mutated only through Reserve and Release.
type Book struct {
	ID       int64
	Title    string
	Author   string
	Genres   []string
	Price    money.Money
	Quantity int32
	Audit    audit.Metadata
}

// NewBook validates and constructs a Book aggregate.
func NewBook(id int64, title, author string, price money.Money, quantity int32) (*Book, error) {
	book := &Book{
		ID:       id,
		Title:    title,
		Author:   author,
		Price:    price,
		Quantity: quantity,
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

// Validate enforces invariants on the aggregate.
func (b *Book) Validate() error {
	if b.Title == "" {
		return ErrEmptyTitle
	}
	if err := b.Price.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPrice, err)
	}
	if b.Quantity < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Reserve decrements the available quantity, failing without mutation
// when the request exceeds availability.
func (b *Book) Reserve(qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > b.Quantity {
		return &InsufficientStockError{BookID: b.ID, Requested: qty, Available: b.Quantity}
	}
	b.Quantity -= qty
	return nil
}

// Release returns previously reserved units to the available quantity.
func (b *Book) Release(qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	b.Quantity += qty
	return nil
}
