package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists key-to-order bindings. The unique index on
// the key column is the commit-time backstop: two transactions racing on
// the same fresh key cannot both insert, whatever the service saw when
// it looked the key up.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

type idempotencyRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:255"`
	UserID    int64     `gorm:"column:user_id;index"`
	OrderID   int64     `gorm:"column:order_id;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func (r *idempotencyRecord) toPort() *ports.IdempotencyRecord {
	if r == nil {
		return nil
	}
	return &ports.IdempotencyRecord{
		Key:       r.Key,
		UserID:    r.UserID,
		OrderID:   r.OrderID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Get returns the binding for the key, or nil when the key is unused.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	var record idempotencyRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// Save inserts the binding inside the order transaction. A duplicate-key
// failure means another request bound the key first; that surfaces as
// ErrIdempotencyConflict and the service re-resolves it after rollback.
func (s *IdempotencyStore) Save(ctx context.Context, tx ports.Tx, record ports.IdempotencyRecord) error {
	pgTx, err := asTx(tx)
	if err != nil {
		return err
	}
	row := idempotencyRecord{
		Key:     record.Key,
		UserID:  record.UserID,
		OrderID: record.OrderID,
	}
	if err := pgTx.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrIdempotencyConflict
		}
		return err
	}
	return nil
}
