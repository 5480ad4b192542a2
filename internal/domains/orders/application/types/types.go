// Package types holds the order workflow command payloads shared by the
// service port, HTTP mappers, and the durable workflow layer.
package types

// LineItemInput is one requested (book, quantity) pair.
type LineItemInput struct {
	BookID   int64 `json:"bookId"`
	Quantity int32 `json:"quantity"`
}

// CreateOrderInput carries everything needed to place an order. The
// idempotency key is an opaque client-chosen string and may be empty.
type CreateOrderInput struct {
	UserID         int64           `json:"userId"`
	Items          []LineItemInput `json:"items"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}
