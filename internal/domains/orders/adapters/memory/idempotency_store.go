package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore provides an in-memory implementation for development and tests.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore constructs an empty in-memory store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns the stored record for the provided key, or nil when absent.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	copy := record
	return &copy, nil
}

// Save binds the key, or fails with ErrIdempotencyConflict when it is
// already bound to a different user or order. The binding is removed if
// the transaction rolls back.
//
// Like every mutation in this adapter, the write is visible to Get
// before Commit. Save is the last write of the order transaction and a
// memory Commit cannot fail, so the window in which a reader sees a
// binding for a not-yet-committed order is confined to this
// single-process fallback; the postgres store gets real isolation from
// the database transaction.
func (s *IdempotencyStore) Save(_ context.Context, tx ports.Tx, record ports.IdempotencyRecord) error {
	memTx, err := asTx(tx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.Key]; ok {
		if existing.UserID != record.UserID || existing.OrderID != record.OrderID {
			return ports.ErrIdempotencyConflict
		}
		return nil
	}

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records[record.Key] = record
	key := record.Key
	memTx.onRollback(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.records, key)
	})
	return nil
}
