package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&bookRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&idempotencyKeyRecord{},
		&cartRecord{},
		&cartItemRecord{},
		&customerRecord{},
	)
}

// Book schema mirrors the catalog Postgres adapter.
type bookRecord struct {
	ID            int64          `gorm:"primaryKey;column:id"`
	Title         string         `gorm:"column:title"`
	Author        string         `gorm:"column:author"`
	Genres        pq.StringArray `gorm:"column:genres;type:text[]"`
	PriceCents    int64          `gorm:"column:price_cents"`
	PriceCurrency string         `gorm:"column:price_currency;type:varchar(8)"`
	Quantity      int32          `gorm:"column:quantity"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	DeletedAt     *time.Time     `gorm:"column:deleted_at;index"`
}

func (bookRecord) TableName() string { return "books" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	Reference      string    `gorm:"column:reference;size:64;uniqueIndex"`
	UserID         int64     `gorm:"column:user_id;index"`
	Status         string    `gorm:"column:status;type:varchar(32);index"`
	TotalCents     int64     `gorm:"column:total_cents"`
	TotalCurrency  string    `gorm:"column:total_currency;type:varchar(8)"`
	IdempotencyKey *string   `gorm:"column:idempotency_key;size:255"`
	CreatedAt      time.Time `gorm:"column:created_at;index"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	OrderID       int64     `gorm:"column:order_id;index"`
	BookID        int64     `gorm:"column:book_id;index"`
	Title         string    `gorm:"column:title"`
	Quantity      int32     `gorm:"column:quantity"`
	PriceCents    int64     `gorm:"column:price_cents"`
	PriceCurrency string    `gorm:"column:price_currency;type:varchar(8)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Idempotency key bindings. The primary key on the key column is the
// commit-time backstop for racing requests.
type idempotencyKeyRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:255"`
	UserID    int64     `gorm:"column:user_id;index"`
	OrderID   int64     `gorm:"column:order_id;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (idempotencyKeyRecord) TableName() string { return "order_idempotency_keys" }

// Cart schema mirrors the cart Postgres adapter.
type cartRecord struct {
	UserID        int64     `gorm:"primaryKey;column:user_id"`
	TotalCents    int64     `gorm:"column:total_cents"`
	TotalCurrency string    `gorm:"column:total_currency;type:varchar(8)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

type cartItemRecord struct {
	ID            int64  `gorm:"primaryKey;column:id"`
	CartUserID    int64  `gorm:"column:cart_user_id;index"`
	BookID        int64  `gorm:"column:book_id"`
	Title         string `gorm:"column:title"`
	Quantity      int32  `gorm:"column:quantity"`
	PriceCents    int64  `gorm:"column:price_cents"`
	PriceCurrency string `gorm:"column:price_currency;type:varchar(8)"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

// Customer schema backs the eligibility checker.
type customerRecord struct {
	ID             int64      `gorm:"primaryKey;column:id"`
	Email          string     `gorm:"column:email;uniqueIndex"`
	EmailConfirmed bool       `gorm:"column:email_confirmed"`
	Status         string     `gorm:"column:status;type:varchar(32)"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at;index"`
}

func (customerRecord) TableName() string { return "customers" }
