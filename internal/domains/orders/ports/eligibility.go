package ports

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrIneligible marks an account not in good standing for ordering.
	ErrIneligible = errors.New("user is not eligible to place orders")
)

// EligibilityChecker is the narrow interface onto the accounts system:
// it answers whether a user may place orders (e.g. email confirmed,
// account active). Auth mechanics live elsewhere.
type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, userID int64) error
}
