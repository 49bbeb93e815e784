package api

import (
	"context"
	"net/http"

	confirmdomain "github.com/dwikikusuma/storefront/internal/confirmation/domain"
	paymentapp "github.com/dwikikusuma/storefront/internal/payment/app"
	"github.com/gin-gonic/gin"
)

// handlePay validates the whole checkout, runs the payment and, once the
// order is confirmed, the confirmation step. The response is the single
// confirmation view.
func (s *Server) handlePay(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "INVALID_ARGUMENT", Message: err.Error()})
		return
	}
	sess, ok := s.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := currentUser(c)

	if step, errs, valid := sess.Checkout.ValidateAll(); !valid {
		c.JSON(http.StatusUnprocessableEntity, stepDTO{Step: int(step), StepName: step.String(), Errors: errs})
		return
	}

	var (
		confirmation confirmdomain.Confirmation
		confirmErr   error
	)
	res, err := s.deps.Payments.Pay(ctx, paymentapp.PayRequest{
		Order: paymentapp.Order{
			User:    user,
			Items:   sess.Cart.Snapshot().Items,
			Form:    sess.Checkout.Form(),
			Summary: sess.Checkout.Summary(),
		},
		Credential: paymentapp.Credential{PaymentMethodID: req.PaymentMethodID},
		OnSuccess: func(orderID string) {
			confirmation, confirmErr = s.deps.Confirm.Confirm(context.WithoutCancel(ctx), user.ID, orderID)
		},
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	if confirmErr != nil {
		// Paid and confirmed upstream; only the local view failed.
		s.log.Error("order confirmation view failed", "order_id", res.OrderID, "err", confirmErr)
		confirmation = confirmdomain.Confirmation{OrderID: res.OrderID}
	}

	c.JSON(http.StatusOK, payResponse{
		OrderID:         confirmation.OrderID,
		PaymentIntentID: res.PaymentIntentID,
		ConfirmedAt:     confirmation.ConfirmedAt,
	})
}

func (s *Server) handlePaymentStatus(c *gin.Context) {
	a := s.deps.Payments.Status(currentUser(c).ID)
	c.JSON(http.StatusOK, paymentStatusDTO{
		Status:      string(a.Status),
		OrderID:     a.OrderID,
		OrderStatus: string(a.OrderStatus),
		Kind:        string(a.Kind),
		UpdatedAt:   a.UpdatedAt,
	})
}
