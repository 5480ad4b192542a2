// Package postgres persists carts relationally, one carts row per user
// plus cart_items lines.
package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
	"github.com/bookworks/bookstore-api/internal/domains/cart/ports"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var _ ports.Repository = (*Repository)(nil)

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

type cartRecord struct {
	UserID        int64            `gorm:"primaryKey;column:user_id"`
	TotalCents    int64            `gorm:"column:total_cents"`
	TotalCurrency string           `gorm:"column:total_currency;type:varchar(8)"`
	Items         []cartItemRecord `gorm:"foreignKey:CartUserID"`
	CreatedAt     time.Time        `gorm:"column:created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

type cartItemRecord struct {
	ID            int64  `gorm:"primaryKey;autoIncrement;column:id"`
	CartUserID    int64  `gorm:"column:cart_user_id;index"`
	BookID        int64  `gorm:"column:book_id"`
	Title         string `gorm:"column:title"`
	Quantity      int32  `gorm:"column:quantity"`
	PriceCents    int64  `gorm:"column:price_cents"`
	PriceCurrency string `gorm:"column:price_currency;type:varchar(8)"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

func (r *Repository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, domain.ErrInvalidUser
	}
	var record cartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&record, "user_id = ?", userID).Error
	if err == nil {
		return recordToCart(record), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cart, err := domain.NewCart(userID, r.now())
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Save upserts the cart row and replaces its lines in one transaction.
func (r *Repository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil {
		return domain.ErrInvalidUser
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := cartRecord{
			UserID:        cart.UserID,
			TotalCents:    cart.Total.Amount,
			TotalCurrency: cart.Total.Currency,
			CreatedAt:     cart.CreatedAt,
			UpdatedAt:     cart.UpdatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_cents", "total_currency", "updated_at"}),
		}).Create(&record).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_user_id = ?", cart.UserID).Delete(&cartItemRecord{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		items := make([]cartItemRecord, 0, len(cart.Items))
		for _, item := range cart.Items {
			items = append(items, cartItemRecord{
				CartUserID:    cart.UserID,
				BookID:        item.BookID,
				Title:         item.Title,
				Quantity:      item.Quantity,
				PriceCents:    item.UnitPrice.Amount,
				PriceCurrency: item.UnitPrice.Currency,
			})
		}
		return tx.Create(&items).Error
	})
}

func recordToCart(record cartRecord) *domain.Cart {
	cart := &domain.Cart{
		UserID:    record.UserID,
		Total:     money.Money{Amount: record.TotalCents, Currency: record.TotalCurrency},
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	for _, item := range record.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			BookID:    item.BookID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: money.Money{Amount: item.PriceCents, Currency: item.PriceCurrency},
		})
	}
	return cart
}
