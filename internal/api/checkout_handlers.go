package api

import (
	"errors"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *Server) handleGetCheckout(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toCheckoutDTO(sess.Checkout.View()))
}

func (s *Server) handleUpdateCheckout(c *gin.Context) {
	var p domain.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	sess, ok := s.session(c)
	if !ok {
		return
	}
	sess.Checkout.Update(c.Request.Context(), p)
	c.JSON(http.StatusOK, toCheckoutDTO(sess.Checkout.View()))
}

// handleNext answers 422 with the step's field errors when it does not
// validate.
func (s *Server) handleNext(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	step, errs, err := sess.Checkout.Next(c.Request.Context())
	if err != nil && !errors.Is(err, app.ErrLastStep) {
		s.writeError(c, err)
		return
	}
	body := stepDTO{Step: int(step), StepName: step.String(), Errors: errs}
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handlePrevious(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	step := sess.Checkout.Previous(c.Request.Context())
	c.JSON(http.StatusOK, stepDTO{Step: int(step), StepName: step.String()})
}

func (s *Server) handleResetCheckout(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.Checkout.Reset(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleShippingOptions resolves options for ?country=. The subtotal is
// ?subtotal= when given, otherwise the caller's cart.
func (s *Server) handleShippingOptions(c *gin.Context) {
	code, err := s.deps.Shipping.CountryCode(c.Query("country"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	sub, err := money.Parse(c.Query("subtotal"))
	if err != nil {
		s.writeError(c, status.Errorf(codes.InvalidArgument, "subtotal %q is not a number", c.Query("subtotal")))
		return
	}
	if c.Query("subtotal") == "" {
		sess, ok := s.session(c)
		if !ok {
			return
		}
		sub = sess.Cart.Snapshot().Subtotal()
	}

	c.JSON(http.StatusOK, gin.H{
		"countryCode": code,
		"region":      string(s.deps.Shipping.RegionOf(code)),
		"options":     toOptionDTOs(s.deps.Shipping.Resolve(code, sub)),
	})
}
