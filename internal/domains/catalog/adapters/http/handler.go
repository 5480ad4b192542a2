// Package http exposes catalog administration over gin: adding titles,
// restocking, and the read endpoints the storefront uses.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	bookmapper "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/http/mapper"
	catalogapp "github.com/bookworks/bookstore-api/internal/domains/catalog/application"
	"github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	"github.com/bookworks/bookstore-api/internal/domains/catalog/ports"
	apierrors "github.com/bookworks/bookstore-api/internal/shared/errors"
	"github.com/bookworks/bookstore-api/internal/shared/money"
)

// BookAPI wires HTTP transport to the catalog service.
type BookAPI struct {
	service   ports.Service
	responder *apierrors.Responder
}

func NewBookAPI(service ports.Service) BookAPI {
	return BookAPI{service: service, responder: apierrors.DefaultResponder}
}

// Register mounts the catalog routes on the router group.
func (api *BookAPI) Register(group *gin.RouterGroup) {
	group.POST("/books", api.AddBook)
	group.GET("/books", api.ListBooks)
	group.GET("/books/:bookId", api.GetBook)
	group.POST("/books/:bookId/restock", api.Restock)
	group.DELETE("/books/:bookId", api.DeleteBook)
}

// Post /v1/books
func (api *BookAPI) AddBook(c *gin.Context) {
	var payload bookmapper.MutationBook
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return
	}
	book, err := bookmapper.ToDomainBook(payload)
	if err != nil {
		api.respondBookError(c, err)
		return
	}
	saved, err := api.service.AddBook(c.Request.Context(), book)
	if err != nil {
		api.respondBookError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookmapper.FromDomainBook(saved))
}

// Get /v1/books
func (api *BookAPI) ListBooks(c *gin.Context) {
	books, err := api.service.List(c.Request.Context())
	if err != nil {
		api.respondBookError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmapper.FromDomainBookList(books))
}

// Get /v1/books/:bookId
func (api *BookAPI) GetBook(c *gin.Context) {
	id, ok := api.parseBookID(c)
	if !ok {
		return
	}
	book, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		api.respondBookError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmapper.FromDomainBook(book))
}

// Post /v1/books/:bookId/restock
func (api *BookAPI) Restock(c *gin.Context) {
	id, ok := api.parseBookID(c)
	if !ok {
		return
	}
	var payload bookmapper.RestockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return
	}
	book, err := api.service.Restock(c.Request.Context(), id, payload.Quantity)
	if err != nil {
		api.respondBookError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmapper.FromDomainBook(book))
}

// Delete /v1/books/:bookId
func (api *BookAPI) DeleteBook(c *gin.Context) {
	id, ok := api.parseBookID(c)
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), id); err != nil {
		api.respondBookError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *BookAPI) parseBookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("bookId must be an integer"))
		return 0, false
	}
	return id, true
}

func (api *BookAPI) respondBookError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		api.responder.Respond(c, apierrors.NewNotFoundProblem("book", c.Param("bookId")))
	case errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrNegativeStock),
		errors.Is(err, money.ErrNegativeAmount),
		errors.Is(err, money.ErrEmptyCurrency):
		api.responder.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
	default:
		api.responder.RespondError(c, err)
	}
}
