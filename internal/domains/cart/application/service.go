// Package application orchestrates cart use cases over the repository
// and catalog availability ports.
package application

import (
	"context"
	"time"

	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
	"github.com/bookworks/bookstore-api/internal/domains/cart/ports"
	catalogdomain "github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
)

var _ ports.Service = (*Service)(nil)

// Service implements the shopping cart use cases. Availability checks
// are point-in-time: the cart never reserves stock, the order workflow
// does that at checkout.
type Service struct {
	repo         ports.Repository
	availability ports.BookAvailability
	now          func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the cart service with its collaborators.
func NewService(repo ports.Repository, availability ports.BookAvailability, opts ...Option) *Service {
	s := &Service{repo: repo, availability: availability, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the user's cart, creating an empty one on first use.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrInvalidUser)
	}
	return s.repo.GetOrCreate(ctx, userID)
}

// AddItem merges the requested quantity into the cart after checking the
// merged line still fits current availability.
func (s *Service) AddItem(ctx context.Context, userID, bookID int64, quantity int32) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrInvalidUser)
	}
	if bookID <= 0 {
		return nil, mapError(domain.ErrInvalidBook)
	}
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	view, err := s.availability.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	merged := cart.Quantity(bookID) + quantity
	if merged > view.Available {
		return nil, &catalogdomain.InsufficientStockError{
			BookID:    bookID,
			Requested: merged,
			Available: view.Available,
		}
	}
	item := domain.CartItem{
		BookID:    bookID,
		Title:     view.Title,
		Quantity:  quantity,
		UnitPrice: view.UnitPrice,
	}
	if err := cart.MergeItem(item, s.now()); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItemQuantity replaces the quantity of an existing line.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, bookID int64, quantity int32) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrInvalidUser)
	}
	if quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	view, err := s.availability.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if quantity > view.Available {
		return nil, &catalogdomain.InsufficientStockError{
			BookID:    bookID,
			Requested: quantity,
			Available: view.Available,
		}
	}
	if err := cart.SetItemQuantity(bookID, quantity, s.now()); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops the line. Removing an absent line succeeds.
func (s *Service) RemoveItem(ctx context.Context, userID, bookID int64) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrInvalidUser)
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(bookID, s.now()); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (s *Service) Clear(ctx context.Context, userID int64) (*domain.Cart, error) {
	if userID <= 0 {
		return nil, mapError(domain.ErrInvalidUser)
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Clear(s.now())
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
