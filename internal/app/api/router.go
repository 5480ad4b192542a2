package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	carthttp "github.com/bookworks/bookstore-api/internal/domains/cart/adapters/http"
	cataloghttp "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/http"
	orderhttp "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/http"
)

// APIHandlers groups the per-context HTTP adapters mounted on the router.
type APIHandlers struct {
	BookAPI  cataloghttp.BookAPI
	OrderAPI orderhttp.OrderAPI
	CartAPI  carthttp.CartAPI
}

// NewRouter assembles the gin engine with all bounded-context routes
// under /v1 plus a health endpoint. Middleware must be passed here so it
// wraps every registered route.
func NewRouter(handlers APIHandlers, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.Default()
	router.Use(middleware...)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	handlers.BookAPI.Register(v1)
	handlers.OrderAPI.Register(v1)
	handlers.CartAPI.Register(v1)

	return router
}
