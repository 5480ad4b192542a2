package mapper

import (
	"time"

	ordertypes "github.com/bookworks/bookstore-api/internal/domains/orders/application/types"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
)

// CreateOrderRequest is the inbound payload for placing an order.
type CreateOrderRequest struct {
	Items []LineItem `json:"items"`
}

// LineItem is one requested (book, quantity) pair on the wire.
type LineItem struct {
	BookID   int64 `json:"bookId"`
	Quantity int32 `json:"quantity"`
}

// UpdateStatusRequest carries the requested target status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderItem is the HTTP representation of an order line.
type OrderItem struct {
	BookID     int64  `json:"bookId"`
	Title      string `json:"title"`
	Quantity   int32  `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
	LineCents  int64  `json:"lineTotalCents"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID         int64       `json:"id"`
	Reference  string      `json:"reference"`
	UserID     int64       `json:"userId"`
	Status     string      `json:"status"`
	TotalCents int64       `json:"totalCents"`
	Currency   string      `json:"currency"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"createdAt,omitempty"`
	UpdatedAt  time.Time   `json:"updatedAt,omitempty"`
}

// ToCreateOrderInput builds the application command from the request and
// the authenticated user and idempotency headers.
func ToCreateOrderInput(userID int64, idempotencyKey string, req CreateOrderRequest) ordertypes.CreateOrderInput {
	input := ordertypes.CreateOrderInput{
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, ordertypes.LineItemInput{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		})
	}
	return input
}

// FromDomainOrder maps an order aggregate to its transport shape.
func FromDomainOrder(o *domain.Order) Order {
	out := Order{
		ID:         o.ID,
		Reference:  o.Reference,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalCents: o.Total.Amount,
		Currency:   o.Total.Currency,
		CreatedAt:  o.Audit.CreatedAt,
		UpdatedAt:  o.Audit.UpdatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, OrderItem{
			BookID:     item.BookID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			PriceCents: item.UnitPrice.Amount,
			LineCents:  item.LineTotal().Amount,
		})
	}
	return out
}
