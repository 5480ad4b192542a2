package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

// Tx wraps a GORM transaction so the repository, ledger, and
// idempotency store can share one database transaction.
type Tx struct {
	db *gorm.DB
}

func (t *Tx) Commit() error {
	return t.db.Commit().Error
}

func (t *Tx) Rollback() error {
	return t.db.Rollback().Error
}

func asTx(tx ports.Tx) (*Tx, error) {
	pgTx, ok := tx.(*Tx)
	if !ok || pgTx == nil || pgTx.db == nil {
		return nil, errors.New("postgres adapter requires a postgres transaction")
	}
	return pgTx, nil
}
