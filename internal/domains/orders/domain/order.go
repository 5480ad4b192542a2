package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookworks/bookstore-api/internal/shared/audit"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var (
	ErrInvalidUserID   = errors.New("user id must be greater than zero")
	ErrEmptyOrder      = errors.New("order must contain at least one line item")
	ErrInvalidQuantity = errors.New("line item quantity must be greater than zero")
	ErrInvalidBookID   = errors.New("line item book id must be greater than zero")
	ErrTotalMismatch   = errors.New("order total does not match the sum of its line items")
)

// OrderItem is one (book, quantity) pair within an order. The unit price
// is snapshotted at reservation time and immutable thereafter, so
// historical orders are immune to later catalog price changes.
type OrderItem struct {
	BookID    int64
	Title     string
	Quantity  int32
	UnitPrice money.Money
}

// LineTotal is quantity times the unit price snapshot.
func (i OrderItem) LineTotal() money.Money {
	return i.UnitPrice.MulQuantity(i.Quantity)
}

// Order is the purchase aggregate. It is created inside a transaction by
// the order workflow, mutated only through status transitions, and never
// physically deleted.
type Order struct {
	ID             int64
	Reference      string
	UserID         int64
	Status         Status
	Total          money.Money
	IdempotencyKey string
	Items          []OrderItem
	Audit          audit.Metadata
}

// NewOrder validates the line items, computes the total from the price
// snapshots, and constructs a pending order.
func NewOrder(userID int64, items []OrderItem, idempotencyKey string) (*Order, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	total := money.Money{}
	for _, item := range items {
		if item.BookID <= 0 {
			return nil, ErrInvalidBookID
		}
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		sum, err := total.Add(item.LineTotal())
		if err != nil {
			return nil, err
		}
		total = sum
	}
	return &Order{
		Reference:      uuid.NewString(),
		UserID:         userID,
		Status:         StatusPending,
		Total:          total,
		IdempotencyKey: idempotencyKey,
		Items:          append([]OrderItem{}, items...),
	}, nil
}

// Validate enforces invariants on the aggregate, including that the
// total equals the sum of line totals.
func (o *Order) Validate() error {
	if o.UserID <= 0 {
		return ErrInvalidUserID
	}
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	sum := money.Money{}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		lineSum, err := sum.Add(item.LineTotal())
		if err != nil {
			return err
		}
		sum = lineSum
	}
	if !sum.Equal(o.Total) {
		return fmt.Errorf("%w: total %s, items %s", ErrTotalMismatch, o.Total, sum)
	}
	return nil
}

// TransitionTo applies a status change after checking legality.
func (o *Order) TransitionTo(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}
	o.Status = target
	return nil
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]OrderItem{}, o.Items...)
	return &clone
}
