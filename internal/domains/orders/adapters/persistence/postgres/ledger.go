package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	catalogdomain "github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var _ ports.InventoryLedger = (*Ledger)(nil)

// Ledger reserves and releases stock against the books table.
//
// TryReserve uses a single conditional UPDATE so two concurrent orders
// can never both consume the last copy: the quantity guard is evaluated
// under the row lock the UPDATE takes, and the loser sees zero rows.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

type reservedRow struct {
	Title         string `gorm:"column:title"`
	PriceCents    int64  `gorm:"column:price_cents"`
	PriceCurrency string `gorm:"column:price_currency"`
}

func (l *Ledger) TryReserve(ctx context.Context, tx ports.Tx, bookID int64, quantity int32) (*ports.BookSnapshot, error) {
	pgTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, catalogdomain.ErrInvalidQuantity
	}

	var row reservedRow
	result := pgTx.db.WithContext(ctx).Raw(
		`UPDATE books
		    SET quantity = quantity - ?, updated_at = NOW()
		  WHERE id = ? AND deleted_at IS NULL AND quantity >= ?
		RETURNING title, price_cents, price_currency`,
		quantity, bookID, quantity,
	).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, l.classifyFailure(ctx, pgTx, bookID, quantity)
	}
	return &ports.BookSnapshot{
		BookID:    bookID,
		Title:     row.Title,
		UnitPrice: money.Money{Amount: row.PriceCents, Currency: row.PriceCurrency},
	}, nil
}

// classifyFailure distinguishes an unknown book from insufficient stock
// after a reservation UPDATE matched no rows.
func (l *Ledger) classifyFailure(ctx context.Context, pgTx *Tx, bookID int64, requested int32) error {
	var row struct {
		Quantity int32 `gorm:"column:quantity"`
	}
	err := pgTx.db.WithContext(ctx).
		Table("books").
		Select("quantity").
		Where("id = ? AND deleted_at IS NULL", bookID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrBookNotFound
		}
		return err
	}
	return &catalogdomain.InsufficientStockError{
		BookID:    bookID,
		Requested: requested,
		Available: row.Quantity,
	}
}

// Release returns previously reserved copies to the shelf. Used when an
// order is cancelled.
func (l *Ledger) Release(ctx context.Context, tx ports.Tx, bookID int64, quantity int32) error {
	pgTx, err := asTx(tx)
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return catalogdomain.ErrInvalidQuantity
	}
	result := pgTx.db.WithContext(ctx).Exec(
		`UPDATE books
		    SET quantity = quantity + ?, updated_at = NOW()
		  WHERE id = ? AND deleted_at IS NULL`,
		quantity, bookID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrBookNotFound
	}
	return nil
}
