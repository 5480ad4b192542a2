package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	"github.com/bookworks/bookstore-api/internal/shared/audit"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM-mapped columns.
// Orders are never physically deleted; cancellation is a status change.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID             int64             `gorm:"primaryKey;autoIncrement;column:id"`
	Reference      string            `gorm:"column:reference;size:64;uniqueIndex"`
	UserID         int64             `gorm:"column:user_id;index"`
	Status         string            `gorm:"column:status;type:varchar(32);index"`
	TotalCents     int64             `gorm:"column:total_cents"`
	TotalCurrency  string            `gorm:"column:total_currency;type:varchar(8)"`
	IdempotencyKey *string           `gorm:"column:idempotency_key;size:255"`
	Items          []orderItemRecord `gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time         `gorm:"column:created_at;index"`
	UpdatedAt      time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID       int64     `gorm:"column:order_id;index"`
	BookID        int64     `gorm:"column:book_id;index"`
	Title         string    `gorm:"column:title"`
	Quantity      int32     `gorm:"column:quantity"`
	PriceCents    int64     `gorm:"column:price_cents"`
	PriceCurrency string    `gorm:"column:price_currency;type:varchar(8)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (orderItemRecord) TableName() string { return "order_items" }

func newOrderRecord(o *domain.Order) orderRecord {
	rec := orderRecord{
		ID:            o.ID,
		Reference:     o.Reference,
		UserID:        o.UserID,
		Status:        string(o.Status),
		TotalCents:    o.Total.Amount,
		TotalCurrency: o.Total.Currency,
	}
	if o.IdempotencyKey != "" {
		key := o.IdempotencyKey
		rec.IdempotencyKey = &key
	}
	for _, item := range o.Items {
		rec.Items = append(rec.Items, orderItemRecord{
			BookID:        item.BookID,
			Title:         item.Title,
			Quantity:      item.Quantity,
			PriceCents:    item.UnitPrice.Amount,
			PriceCurrency: item.UnitPrice.Currency,
		})
	}
	return rec
}

func (r *orderRecord) toDomain() *domain.Order {
	if r == nil {
		return nil
	}
	order := &domain.Order{
		ID:        r.ID,
		Reference: r.Reference,
		UserID:    r.UserID,
		Status:    domain.Status(r.Status),
		Total:     money.Money{Amount: r.TotalCents, Currency: r.TotalCurrency},
		Audit:     audit.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
	if r.IdempotencyKey != nil {
		order.IdempotencyKey = *r.IdempotencyKey
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.OrderItem{
			BookID:    item.BookID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: money.Money{Amount: item.PriceCents, Currency: item.PriceCurrency},
		})
	}
	return order
}

// Begin opens a database transaction shared with the ledger and
// idempotency store.
func (r *Repository) Begin(ctx context.Context) (ports.Tx, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Tx{db: tx}, nil
}

// Create inserts the order and its items inside the transaction.
func (r *Repository) Create(ctx context.Context, tx ports.Tx, order *domain.Order) (*domain.Order, error) {
	pgTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("cannot save nil order")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := newOrderRecord(order)
	if err := pgTx.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	saved := order.Clone()
	saved.ID = record.ID
	saved.Audit = audit.Metadata{CreatedAt: record.CreatedAt, UpdatedAt: record.UpdatedAt}
	return saved, nil
}

// GetByID fetches an order with its line items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// UpdateStatus persists a status transition inside the transaction.
// The WHERE clause guards on the expected from-status, so of two racing
// transitions exactly one updates the row; the loser re-reads and
// reports the transition that actually happened underneath it.
func (r *Repository) UpdateStatus(ctx context.Context, tx ports.Tx, id int64, from, to domain.Status) error {
	pgTx, err := asTx(tx)
	if err != nil {
		return err
	}
	result := pgTx.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var current string
		err := pgTx.db.WithContext(ctx).
			Model(&orderRecord{}).
			Where("id = ?", id).
			Pluck("status", &current).Error
		if err != nil {
			return err
		}
		if current == "" {
			return ports.ErrNotFound
		}
		return &domain.InvalidTransitionError{From: domain.Status(current), To: to}
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}
