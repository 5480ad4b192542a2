package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates a key already bound to a different user's order.
var ErrIdempotencyConflict = errors.New("idempotency key conflict")

// IdempotencyRecord binds a client-supplied key to the order it produced.
// Replay by the same user returns the same order; replay by a different
// user is a conflict, never a silent reuse.
type IdempotencyRecord struct {
	Key       string
	UserID    int64
	OrderID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdempotencyStore persists key bindings. Save joins the order-creation
// transaction, so a reader never observes a binding for a half-committed
// order; the unique key constraint at commit time is the backstop for
// two concurrent calls bearing the same key.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the binding inside tx. A key already bound to a
	// different user or order yields ErrIdempotencyConflict.
	Save(ctx context.Context, tx Tx, record IdempotencyRecord) error
}
