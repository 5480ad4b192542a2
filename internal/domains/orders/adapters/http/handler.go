// Package http exposes the order workflow over gin, translating service
// errors into RFC 7807 problem responses.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/bookworks/bookstore-api/internal/domains/catalog/domain"
	ordermapper "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/http/mapper"
	orderapp "github.com/bookworks/bookstore-api/internal/domains/orders/application"
	ordertypes "github.com/bookworks/bookstore-api/internal/domains/orders/application/types"
	"github.com/bookworks/bookstore-api/internal/domains/orders/domain"
	"github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	apierrors "github.com/bookworks/bookstore-api/internal/shared/errors"
)

const (
	// HeaderUserID identifies the acting customer. Stands in for the
	// session layer, which terminates upstream.
	HeaderUserID = "X-User-ID"
	// HeaderIdempotencyKey carries the client-chosen retry key.
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// OrderAPI wires HTTP transport to the order workflow service. When a
// workflow orchestrator is configured, order creation runs through it.
type OrderAPI struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
	responder *apierrors.Responder
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ports.Service, workflows ports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows, responder: apierrors.DefaultResponder}
}

// Register mounts the order routes on the router group.
func (api *OrderAPI) Register(group *gin.RouterGroup) {
	group.POST("/orders", api.CreateOrder)
	group.GET("/orders/:orderId", api.GetOrder)
	group.PUT("/orders/:orderId/status", api.UpdateStatus)
	group.DELETE("/orders/:orderId/cancel", api.CancelOrder)
}

// Post /v1/orders
// Place an order for the authenticated user.
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload ordermapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return
	}
	input := ordermapper.ToCreateOrderInput(userID, c.GetHeader(HeaderIdempotencyKey), payload)
	order, err := api.createOrder(c, input)
	if err != nil {
		api.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(order))
}

func (api *OrderAPI) createOrder(c *gin.Context, input ordertypes.CreateOrderInput) (*domain.Order, error) {
	ctx := c.Request.Context()
	if api.workflows != nil {
		return api.workflows.CreateOrder(ctx, input)
	}
	return api.service.CreateOrder(ctx, input)
}

// Get /v1/orders/:orderId
// Fetch an order with its line items.
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := api.parseOrderID(c)
	if !ok {
		return
	}
	order, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		api.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Put /v1/orders/:orderId/status
// Apply a status transition.
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	id, ok := api.parseOrderID(c)
	if !ok {
		return
	}
	var payload ordermapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON"))
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), id, payload.Status)
	if err != nil {
		api.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Delete /v1/orders/:orderId/cancel
// Cancel an order, restoring reserved stock.
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	id, ok := api.parseOrderID(c)
	if !ok {
		return
	}
	order, err := api.service.CancelOrder(c.Request.Context(), id)
	if err != nil {
		api.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

func (api *OrderAPI) requireUser(c *gin.Context) (int64, bool) {
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

func (api *OrderAPI) parseOrderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("orderId must be an integer"))
		return 0, false
	}
	return id, true
}

func (api *OrderAPI) respondOrderError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var stockErr *catalogdomain.InsufficientStockError
	if errors.As(err, &stockErr) {
		api.responder.Respond(c, apierrors.NewInsufficientStockProblem(stockErr.BookID, stockErr.Requested, stockErr.Available))
		return
	}
	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		api.responder.Respond(c, apierrors.ErrInvalidTransition.
			WithDetail(transitionErr.Error()).
			WithExtension("from", string(transitionErr.From)).
			WithExtension("to", string(transitionErr.To)))
		return
	}

	switch {
	case errors.Is(err, ports.ErrNotFound):
		api.responder.Respond(c, apierrors.NewNotFoundProblem("order", c.Param("orderId")))
	case errors.Is(err, ports.ErrBookNotFound):
		api.responder.Respond(c, apierrors.ErrNotFound.WithDetail("one or more books in the order do not exist"))
	case errors.Is(err, ports.ErrIdempotencyConflict):
		api.responder.Respond(c, apierrors.ErrConflict.WithDetail("idempotency key is already bound to another request"))
	case errors.Is(err, ports.ErrUserNotFound):
		api.responder.Respond(c, apierrors.ErrForbidden.WithDetail("user account does not exist"))
	case errors.Is(err, ports.ErrIneligible):
		api.responder.Respond(c, apierrors.ErrForbidden.WithDetail("user account is not allowed to place orders"))
	case errors.Is(err, orderapp.ErrInvalidInput):
		api.responder.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
	default:
		api.responder.RespondError(c, err)
	}
}
