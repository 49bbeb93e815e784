package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/order/domain"
)

// Backend is the order/payment backend. It creates an order together with
// its payment intent and later marks it paid.
type Backend interface {
	CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error)
	Confirm(ctx context.Context, paymentIntentID, orderID string) (ConfirmResult, error)
}

type ConfirmResult struct {
	Success bool
	Status  domain.Status
	Message string
}
