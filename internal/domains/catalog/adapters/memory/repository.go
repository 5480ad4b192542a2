package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	"github.com/bookworks/bookstore-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory book persistence adapter for development and tests.
type Repository struct {
	mu     sync.RWMutex
	books  map[int64]*domain.Book
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{books: map[int64]*domain.Book{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, errors.New("book is nil")
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *book
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	clone.Audit.Touch(r.now())
	r.books[clone.ID] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[id]
	if !ok || book.Audit.IsDeleted() {
		return nil, ports.ErrNotFound
	}
	clone := *book
	return &clone, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Book, 0, len(r.books))
	for _, book := range r.books {
		if book.Audit.IsDeleted() {
			continue
		}
		clone := *book
		list = append(list, &clone)
	}
	return list, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[id]
	if !ok || book.Audit.IsDeleted() {
		return ports.ErrNotFound
	}
	now := r.now()
	book.Audit.DeletedAt = &now
	book.Audit.UpdatedAt = now
	return nil
}
