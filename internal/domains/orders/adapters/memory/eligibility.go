package memory

import (
	"context"
	"sync"

	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
)

var _ ports.EligibilityChecker = (*EligibilityChecker)(nil)

// EligibilityChecker is an in-memory account directory for development
// and tests: it tracks which users exist and whether they may order.
type EligibilityChecker struct {
	mu    sync.RWMutex
	users map[int64]bool
}

func NewEligibilityChecker() *EligibilityChecker {
	return &EligibilityChecker{users: map[int64]bool{}}
}

// AddUser registers a user and whether their account is in good standing.
func (c *EligibilityChecker) AddUser(userID int64, eligible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[userID] = eligible
}

func (c *EligibilityChecker) CheckEligibility(_ context.Context, userID int64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	eligible, ok := c.users[userID]
	if !ok {
		return ports.ErrUserNotFound
	}
	if !eligible {
		return ports.ErrIneligible
	}
	return nil
}

var _ ports.EligibilityChecker = AllowAllEligibility{}

// AllowAllEligibility accepts every user. Used as the dev fallback when
// no customer directory is configured.
type AllowAllEligibility struct{}

func (AllowAllEligibility) CheckEligibility(_ context.Context, userID int64) error {
	if userID <= 0 {
		return ports.ErrUserNotFound
	}
	return nil
}
