package application

import (
	"context"
	"errors"

	"github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	"github.com/bookworks/bookstore-api/internal/domains/catalog/ports"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// AddBook persists a new book aggregate.
func (s *Service) AddBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book == nil {
		return nil, errors.New("book is nil")
	}
	if err := book.Validate(); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, book)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// GetByID loads a single book.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return book, nil
}

// List returns every catalog entry.
func (s *Service) List(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return books, nil
}

// Restock adds units to a book's available quantity.
func (s *Service) Restock(ctx context.Context, id int64, qty int32) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := book.Release(qty); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, book)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Delete soft-deletes a book.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
