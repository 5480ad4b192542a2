// Package audit carries persistence metadata shared by aggregates.
package audit

import "time"

// Metadata captures creation, mutation, and soft-delete timestamps.
// Soft deletion is an explicit predicate: every read-path query filters
// on DeletedAt rather than relying on implicit global scoping.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted reports whether the entity has been soft deleted.
func (m Metadata) IsDeleted() bool {
	return m.DeletedAt != nil
}

// Touch refreshes the mutation timestamp.
func (m *Metadata) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}
