package mapper

import (
	"time"

	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
)

// AddItemRequest is the inbound payload for adding copies of a book.
type AddItemRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int32 `json:"quantity"`
}

// UpdateItemRequest replaces the quantity of an existing line.
type UpdateItemRequest struct {
	Quantity int32 `json:"quantity"`
}

// CartItem is the HTTP representation of a cart line.
type CartItem struct {
	BookID     int64  `json:"bookId"`
	Title      string `json:"title"`
	Quantity   int32  `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
	LineCents  int64  `json:"lineTotalCents"`
}

// Cart is the HTTP representation of a cart.
type Cart struct {
	UserID     int64      `json:"userId"`
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"totalCents"`
	Currency   string     `json:"currency,omitempty"`
	UpdatedAt  time.Time  `json:"updatedAt,omitempty"`
}

// FromDomainCart maps the aggregate to its transport shape. Items is
// always a JSON array, never null.
func FromDomainCart(c *domain.Cart) Cart {
	out := Cart{
		UserID:     c.UserID,
		Items:      []CartItem{},
		TotalCents: c.Total.Amount,
		Currency:   c.Total.Currency,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, item := range c.Items {
		out.Items = append(out.Items, CartItem{
			BookID:     item.BookID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			PriceCents: item.UnitPrice.Amount,
			LineCents:  item.LineTotal().Amount,
		})
	}
	return out
}
