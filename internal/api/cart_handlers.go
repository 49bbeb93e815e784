package api

import (
	"fmt"
	"net/http"
	"strings"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/gin-gonic/gin"
)

// handleGetCart returns the cart snapshot. reload=true refreshes it from
// the cart service first; expand=products attaches catalog names.
func (s *Server) handleGetCart(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if c.Query("reload") == "true" {
		if err := sess.Cart.LoadCart(ctx); err != nil {
			s.writeError(c, err)
			return
		}
	}

	snap := sess.Cart.Snapshot()
	var products map[string]catalogdomain.Product
	if c.Query("expand") == "products" && s.deps.Products != nil && len(snap.Items) > 0 {
		ids := make([]string, 0, len(snap.Items))
		for _, it := range snap.Items {
			ids = append(ids, it.ProductID)
		}
		var err error
		products, err = s.deps.Products.GetProducts(ctx, ids)
		if err != nil {
			// the cart itself is still valid without names
			s.log.Warn("expand cart products failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, toCartDTO(snap, products))
}

func (s *Server) handleAddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", cartapp.ErrInvalidInput, err))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	sess, ok := s.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	product, variant, err := s.deps.Lookup.Lookup(ctx, strings.TrimSpace(req.ProductID), strings.TrimSpace(req.VariantID))
	if err != nil {
		s.writeError(c, err)
		return
	}
	item, err := sess.Cart.AddToCart(ctx, cartapp.AddRequest{
		Product:  product,
		Variant:  variant,
		Quantity: req.Quantity,
		Size:     req.Size,
		Color:    req.Color,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartItemDTO(item))
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", cartapp.ErrInvalidInput, err))
		return
	}
	sess, ok := s.session(c)
	if !ok {
		return
	}

	item, err := sess.Cart.UpdateItemQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if *req.Quantity <= 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toCartItemDTO(item))
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.Cart.RemoveFromCart(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearCart(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.Cart.ClearCart(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
