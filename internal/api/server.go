// Package api is the storefront's JSON HTTP surface.
package api

import (
	"context"
	"log/slog"
	"net/http"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	confirmdomain "github.com/dwikikusuma/storefront/internal/confirmation/domain"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/internal/shipping"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/gin-gonic/gin"
)

type Sessions interface {
	Get(ctx context.Context, userID string) (*session.Session, error)
}

type ProductLookup interface {
	Lookup(ctx context.Context, productID, variantID string) (cartapp.Product, *cartapp.Variant, error)
}

type ProductReader interface {
	GetProducts(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error)
}

type Payments interface {
	Pay(ctx context.Context, req paymentapp.PayRequest) (paymentapp.Result, error)
	Status(userID string) paymentapp.Attempt
}

type Confirmer interface {
	Confirm(ctx context.Context, userID, orderID string) (confirmdomain.Confirmation, error)
}

type Deps struct {
	Sessions Sessions
	Lookup   ProductLookup
	Products ProductReader
	Shipping *shipping.Resolver
	Payments Payments
	Confirm  Confirmer
	// Ready backs /readyz. Nil means always ready.
	Ready func() bool
	Log   *slog.Logger
}

type Server struct {
	deps   Deps
	log    *slog.Logger
	router *gin.Engine
}

func NewServer(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		deps:   deps,
		log:    logger.OrDefault(deps.Log).With("component", "http"),
		router: router,
	}
	router.Use(gin.Recovery(), s.requestLog())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/readyz", s.handleReady)

	authed := router.Group("/", s.requireUser())
	{
		authed.GET("/cart", s.handleGetCart)
		authed.POST("/cart/items", s.handleAddItem)
		authed.PATCH("/cart/items/:id", s.handleUpdateItem)
		authed.DELETE("/cart/items/:id", s.handleRemoveItem)
		authed.DELETE("/cart", s.handleClearCart)

		authed.GET("/checkout", s.handleGetCheckout)
		authed.PATCH("/checkout", s.handleUpdateCheckout)
		authed.POST("/checkout/next", s.handleNext)
		authed.POST("/checkout/previous", s.handlePrevious)
		authed.DELETE("/checkout", s.handleResetCheckout)
		authed.POST("/checkout/pay", s.handlePay)
		authed.GET("/checkout/payment", s.handlePaymentStatus)

		authed.GET("/shipping/options", s.handleShippingOptions)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleReady(c *gin.Context) {
	if s.deps.Ready != nil && !s.deps.Ready() {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.Status(http.StatusOK)
}
