// Package domain models the shopping cart aggregate. A cart belongs to
// exactly one user and merges duplicate book lines instead of growing
// new ones.
package domain

import (
	"errors"
	"time"

	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var (
	ErrInvalidUser     = errors.New("cart user id must be positive")
	ErrInvalidBook     = errors.New("cart item book id must be positive")
	ErrInvalidQuantity = errors.New("cart item quantity must be positive")
)

// CartItem is one book line. Title and unit price are snapshots taken
// when the line was first added; merging more copies keeps them.
type CartItem struct {
	BookID    int64
	Title     string
	Quantity  int32
	UnitPrice money.Money
}

// LineTotal is quantity times the snapshot unit price.
func (i CartItem) LineTotal() money.Money {
	return i.UnitPrice.MulQuantity(i.Quantity)
}

// Cart is the per-user shopping cart aggregate.
type Cart struct {
	UserID    int64
	Items     []CartItem
	Total     money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCart creates an empty cart for the user.
func NewCart(userID int64, now time.Time) (*Cart, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	return &Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
}

// Quantity returns the current quantity of the book line, zero when absent.
func (c *Cart) Quantity(bookID int64) int32 {
	for _, item := range c.Items {
		if item.BookID == bookID {
			return item.Quantity
		}
	}
	return 0
}

// MergeItem adds quantity to an existing line or appends a new one. An
// existing line keeps its original title and price snapshot.
func (c *Cart) MergeItem(item CartItem, now time.Time) error {
	if item.BookID <= 0 {
		return ErrInvalidBook
	}
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	merged := false
	for i := range c.Items {
		if c.Items[i].BookID == item.BookID {
			c.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, item)
	}
	return c.recompute(now)
}

// SetItemQuantity replaces the quantity of an existing line.
func (c *Cart) SetItemQuantity(bookID int64, quantity int32, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items[i].Quantity = quantity
			return c.recompute(now)
		}
	}
	return ErrItemNotFound
}

// ErrItemNotFound signals the book has no line in the cart.
var ErrItemNotFound = errors.New("cart item not found")

// RemoveItem drops the book line. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(bookID int64, now time.Time) error {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	return c.recompute(now)
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (c *Cart) Clear(now time.Time) {
	c.Items = nil
	c.Total = money.Money{}
	c.UpdatedAt = now
}

// recompute derives the total from the current lines and stamps the
// modification time.
func (c *Cart) recompute(now time.Time) error {
	total := money.Money{}
	for _, item := range c.Items {
		sum, err := total.Add(item.LineTotal())
		if err != nil {
			return err
		}
		total = sum
	}
	c.Total = total
	c.UpdatedAt = now
	return nil
}

// Clone deep-copies the cart.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = append([]CartItem(nil), c.Items...)
	return &clone
}
