package mapper

import (
	"time"

	"github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

// MutationBook captures inbound payloads for creating catalog entries.
type MutationBook struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Genres     []string `json:"genres,omitempty"`
	PriceCents int64    `json:"priceCents"`
	Currency   string   `json:"currency"`
	Quantity   int32    `json:"quantity"`
}

// RestockRequest adds units to a book's available quantity.
type RestockRequest struct {
	Quantity int32 `json:"quantity"`
}

// Book is the HTTP representation of a catalog entry.
type Book struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author,omitempty"`
	Genres     []string  `json:"genres,omitempty"`
	PriceCents int64     `json:"priceCents"`
	Currency   string    `json:"currency"`
	Quantity   int32     `json:"quantity"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// ToDomainBook maps a mutation payload into the domain aggregate.
func ToDomainBook(input MutationBook) (*domain.Book, error) {
	price, err := money.New(input.PriceCents, input.Currency)
	if err != nil {
		return nil, err
	}
	book, err := domain.NewBook(0, input.Title, input.Author, price, input.Quantity)
	if err != nil {
		return nil, err
	}
	book.Genres = append([]string(nil), input.Genres...)
	return book, nil
}

// FromDomainBook maps a domain aggregate into its transport shape.
func FromDomainBook(b *domain.Book) Book {
	return Book{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Genres:     b.Genres,
		PriceCents: b.Price.Amount,
		Currency:   b.Price.Currency,
		Quantity:   b.Quantity,
		CreatedAt:  b.Audit.CreatedAt,
		UpdatedAt:  b.Audit.UpdatedAt,
	}
}

// FromDomainBookList maps a slice of aggregates to transport Books.
func FromDomainBookList(list []*domain.Book) []Book {
	result := make([]Book, 0, len(list))
	for _, b := range list {
		result = append(result, FromDomainBook(b))
	}
	return result
}
