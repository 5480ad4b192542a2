package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	"github.com/bookworks/bookstore-api/internal/domains/catalog/ports"
	"github.com/bookworks/bookstore-api/internal/shared/audit"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists books in PostgreSQL using GORM-mapped columns.
// Soft deletion is an explicit deleted_at predicate on every read query.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

func newBookRecord(b *domain.Book) bookRecord {
	return bookRecord{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genres:        pq.StringArray(b.Genres),
		PriceCents:    b.Price.Amount,
		PriceCurrency: b.Price.Currency,
		Quantity:      b.Quantity,
	}
}

func (r *bookRecord) toDomain() *domain.Book {
	if r == nil {
		return nil
	}
	return &domain.Book{
		ID:       r.ID,
		Title:    r.Title,
		Author:   r.Author,
		Genres:   []string(r.Genres),
		Price:    money.Money{Amount: r.PriceCents, Currency: r.PriceCurrency},
		Quantity: r.Quantity,
		Audit:    audit.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, DeletedAt: r.DeletedAt},
	}
}

// Save inserts or updates a book aggregate.
func (r *Repository) Save(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errors.New("cannot save nil book")
	}
	record := newBookRecord(book)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"title":          record.Title,
				"author":         record.Author,
				"genres":         record.Genres,
				"price_cents":    record.PriceCents,
				"price_currency": record.PriceCurrency,
				"quantity":       record.Quantity,
				"updated_at":     gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a non-deleted book by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record bookRecord
	if err := r.db.WithContext(ctx).
		First(&record, "id = ? AND deleted_at IS NULL", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns every non-deleted book.
func (r *Repository) List(ctx context.Context) ([]*domain.Book, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []bookRecord
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Book, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

// Delete soft-deletes a book by setting deleted_at.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&bookRecord{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"deleted_at": gorm.Expr("NOW()"), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres catalog repository not configured")
	}
	return nil
}
