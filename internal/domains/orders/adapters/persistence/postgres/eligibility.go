package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

var _ ports.EligibilityChecker = (*EligibilityChecker)(nil)

// EligibilityChecker decides whether a customer account may place
// orders: the account must exist, have a confirmed email, and be active.
type EligibilityChecker struct {
	db *gorm.DB
}

func NewEligibilityChecker(db *gorm.DB) *EligibilityChecker {
	return &EligibilityChecker{db: db}
}

type customerRow struct {
	EmailConfirmed bool   `gorm:"column:email_confirmed"`
	Status         string `gorm:"column:status"`
}

func (c *EligibilityChecker) CheckEligibility(ctx context.Context, userID int64) error {
	if c == nil || c.db == nil {
		return errors.New("postgres eligibility checker not configured")
	}
	var row customerRow
	err := c.db.WithContext(ctx).
		Table("customers").
		Select("email_confirmed, status").
		Where("id = ? AND deleted_at IS NULL", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrUserNotFound
		}
		return err
	}
	if !row.EmailConfirmed || row.Status != "active" {
		return ports.ErrIneligible
	}
	return nil
}
