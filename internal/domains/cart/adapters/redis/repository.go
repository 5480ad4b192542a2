// Package redis stores carts as one JSON document per user, keyed
// "cart:user:<id>". Carts are session-shaped data, so a key-value store
// with TTL fits better than relational rows.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
	"github.com/bookworks/bookstore-api/internal/domains/cart/ports"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

var _ ports.Repository = (*Repository)(nil)

// DefaultTTL keeps abandoned carts for thirty days.
const DefaultTTL = 30 * 24 * time.Hour

// Repository persists carts in Redis.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Repository)

// WithTTL overrides the cart expiry.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(client *redis.Client, opts ...Option) *Repository {
	r := &Repository{client: client, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

type cartDocument struct {
	UserID    int64          `json:"userId"`
	Items     []itemDocument `json:"items,omitempty"`
	Total     int64          `json:"totalCents"`
	Currency  string         `json:"currency,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type itemDocument struct {
	BookID     int64  `json:"bookId"`
	Title      string `json:"title"`
	Quantity   int32  `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
	Currency   string `json:"currency"`
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:user:%d", userID)
}

func (r *Repository) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	payload, err := r.client.Get(ctx, cartKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cart, err := domain.NewCart(userID, r.now())
			if err != nil {
				return nil, err
			}
			if err := r.Save(ctx, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
		return nil, fmt.Errorf("load cart for user %d: %w", userID, err)
	}
	var doc cartDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("decode cart for user %d: %w", userID, err)
	}
	return docToCart(doc), nil
}

func (r *Repository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil {
		return domain.ErrInvalidUser
	}
	doc := cartToDoc(cart)
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cart for user %d: %w", cart.UserID, err)
	}
	if err := r.client.Set(ctx, cartKey(cart.UserID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("store cart for user %d: %w", cart.UserID, err)
	}
	return nil
}

func cartToDoc(cart *domain.Cart) cartDocument {
	doc := cartDocument{
		UserID:    cart.UserID,
		Total:     cart.Total.Amount,
		Currency:  cart.Total.Currency,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		doc.Items = append(doc.Items, itemDocument{
			BookID:     item.BookID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			PriceCents: item.UnitPrice.Amount,
			Currency:   item.UnitPrice.Currency,
		})
	}
	return doc
}

func docToCart(doc cartDocument) *domain.Cart {
	cart := &domain.Cart{
		UserID:    doc.UserID,
		Total:     money.Money{Amount: doc.Total, Currency: doc.Currency},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, item := range doc.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			BookID:    item.BookID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: money.Money{Amount: item.PriceCents, Currency: item.Currency},
		})
	}
	return cart
}
