// Package http exposes the shopping cart over gin.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	cartmapper "github.com/bookworks/bookstore-api/internal/domains/cart/adapters/http/mapper"
	cartapp "github.com/bookworks/bookstore-api/internal/domains/cart/application"
	"github.com/bookworks/bookstore-api/internal/domains/cart/domain"
	"github.com/bookworks/bookstore-api/internal/domains/cart/ports"
	catalogdomain "github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	apierrors "github.com/bookworks/bookstore-api/internal/shared/errors"
)

// HeaderUserID identifies the acting customer, matching the orders API.
const HeaderUserID = "X-User-ID"

// CartAPI wires HTTP transport to the cart service.
type CartAPI struct {
	service   ports.Service
	responder *apierrors.Responder
}

func NewCartAPI(service ports.Service) CartAPI {
	return CartAPI{service: service, responder: apierrors.DefaultResponder}
}

// Register mounts the cart routes on the router group.
func (api *CartAPI) Register(group *gin.RouterGroup) {
	group.GET("/cart", api.GetCart)
	group.POST("/cart/items", api.AddItem)
	group.PUT("/cart/items/:bookId", api.UpdateItem)
	group.DELETE("/cart/items/:bookId", api.RemoveItem)
	group.DELETE("/cart", api.ClearCart)
}

// Get /v1/cart
func (api *CartAPI) GetCart(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	cart, err := api.service.Get(c.Request.Context(), userID)
	if err != nil {
		api.respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Post /v1/cart/items
func (api *CartAPI) AddItem(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload cartmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return
	}
	cart, err := api.service.AddItem(c.Request.Context(), userID, payload.BookID, payload.Quantity)
	if err != nil {
		api.respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Put /v1/cart/items/:bookId
func (api *CartAPI) UpdateItem(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	bookID, ok := api.parseBookID(c)
	if !ok {
		return
	}
	var payload cartmapper.UpdateItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return
	}
	cart, err := api.service.UpdateItemQuantity(c.Request.Context(), userID, bookID, payload.Quantity)
	if err != nil {
		api.respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Delete /v1/cart/items/:bookId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	bookID, ok := api.parseBookID(c)
	if !ok {
		return
	}
	cart, err := api.service.RemoveItem(c.Request.Context(), userID, bookID)
	if err != nil {
		api.respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

// Delete /v1/cart
func (api *CartAPI) ClearCart(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	cart, err := api.service.Clear(c.Request.Context(), userID)
	if err != nil {
		api.respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartmapper.FromDomainCart(cart))
}

func (api *CartAPI) requireUser(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(HeaderUserID)
	if raw == "" {
		api.responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing "+HeaderUserID+" header"))
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		api.responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("invalid "+HeaderUserID+" header"))
		return 0, false
	}
	return userID, true
}

func (api *CartAPI) parseBookID(c *gin.Context) (int64, bool) {
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("bookId must be an integer"))
		return 0, false
	}
	return bookID, true
}

func (api *CartAPI) respondCartError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var stockErr *catalogdomain.InsufficientStockError
	if errors.As(err, &stockErr) {
		api.responder.Respond(c, apierrors.NewInsufficientStockProblem(stockErr.BookID, stockErr.Requested, stockErr.Available))
		return
	}
	switch {
	case errors.Is(err, ports.ErrBookNotFound):
		api.responder.Respond(c, apierrors.NewNotFoundProblem("book", c.Param("bookId")))
	case errors.Is(err, domain.ErrItemNotFound):
		api.responder.Respond(c, apierrors.NewNotFoundProblem("cart item", c.Param("bookId")))
	case errors.Is(err, cartapp.ErrInvalidInput):
		api.responder.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
	default:
		api.responder.RespondError(c, err)
	}
}
